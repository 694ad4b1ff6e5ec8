package display

import (
	"fmt"

	"github.com/fatih/color"
)

// Color definitions for consistent styling across the application
var (
	colorChannel = color.New(color.FgCyan, color.Bold)
	colorID      = color.New(color.Faint)
	colorField   = color.New(color.FgYellow)

	colorHeader    = color.New(color.Bold)
	colorSeparator = color.New(color.Faint)

	// Status colors
	colorSuccess = color.New(color.FgGreen)
	colorWarning = color.New(color.FgYellow)
	colorError   = color.New(color.FgRed)
	colorDryRun  = color.New(color.FgCyan)
	colorCount   = color.New(color.Bold)
)

// ColorChannel applies cyan bold styling to a sales channel slug.
func ColorChannel(channel string) string {
	return colorChannel.Sprint(channel)
}

// ColorID applies dim styling to product ids.
func ColorID(id string) string {
	return colorID.Sprint(id)
}

// ColorField applies yellow styling to the field name of an API error.
func ColorField(field string) string {
	return colorField.Sprint(field)
}

// ColorHeader applies bold styling to header text.
func ColorHeader(header string) string {
	return colorHeader.Sprint(header)
}

// ColorSeparator applies dim styling to separator lines.
func ColorSeparator(separator string) string {
	return colorSeparator.Sprint(separator)
}

// ColorSuccess applies green styling for success messages.
func ColorSuccess(msg string) string {
	return colorSuccess.Sprint(msg)
}

// ColorWarning applies yellow styling for warning/confirmation messages.
func ColorWarning(msg string) string {
	return colorWarning.Sprint(msg)
}

// ColorError applies red styling for error messages.
func ColorError(msg string) string {
	return colorError.Sprint(msg)
}

// ColorDryRun applies cyan styling for dry-run indicators.
func ColorDryRun(msg string) string {
	return colorDryRun.Sprint(msg)
}

// ColorCount applies bold styling to counts/numbers.
func ColorCount(n int) string {
	return colorCount.Sprint(fmt.Sprintf("%d", n))
}
