package saleor

// OperationKind tells queries and mutations apart.
type OperationKind string

const (
	KindQuery    OperationKind = "query"
	KindMutation OperationKind = "mutation"
)

// Operation is a named GraphQL document.
type Operation struct {
	Name     string
	Kind     OperationKind
	Document string
}

// TokenCreate exchanges an email/password pair for a token.
var TokenCreate = Operation{
	Name: "login",
	Kind: KindMutation,
	Document: `mutation login($email: String!, $pass: String!) {
  tokenCreate(email: $email, password: $pass) {
    token
    refreshToken
    errors {
      field
      message
    }
  }
}`,
}

// ProductsInitial fetches the first page of products in a channel.
var ProductsInitial = Operation{
	Name: "products_initial",
	Kind: KindQuery,
	Document: `query products_initial($first: Int!, $channel: String) {
  products(first: $first, channel: $channel) {
    pageInfo {
      hasNextPage
      endCursor
    }
    edges {
      node {
        id
      }
    }
  }
}`,
}

// ProductsNext fetches the page following the cursor in $after.
var ProductsNext = Operation{
	Name: "products_next",
	Kind: KindQuery,
	Document: `query products_next($after: String!, $first: Int!, $channel: String) {
  products(first: $first, after: $after, channel: $channel) {
    pageInfo {
      hasNextPage
      endCursor
    }
    edges {
      node {
        id
      }
    }
  }
}`,
}

// DeleteAllProducts removes every product in $ids in one call.
var DeleteAllProducts = Operation{
	Name: "deleteAllProducts",
	Kind: KindMutation,
	Document: `mutation deleteAllProducts($ids: [ID!]!) {
  productBulkDelete(ids: $ids) {
    count
    errors {
      field
      message
    }
  }
}`,
}
