package prompts

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ConfirmWithInput asks the user to type expected and reports whether they
// did. The comparison is exact after trimming surrounding whitespace.
func ConfirmWithInput(reader io.Reader, writer io.Writer, message, expected string) (bool, error) {
	fmt.Fprintf(writer, "%s: ", message)

	answer, ok, err := readLine(reader)
	if err != nil || !ok {
		return false, err
	}
	return answer == expected, nil
}

// readLine returns the trimmed first line. ok is false on EOF.
func readLine(reader io.Reader) (string, bool, error) {
	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", false, fmt.Errorf("failed to read input: %w", err)
		}
		// EOF or no input - default to no
		return "", false, nil
	}
	return strings.TrimSpace(scanner.Text()), true, nil
}
