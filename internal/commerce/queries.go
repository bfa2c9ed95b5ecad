package commerce

// GraphQL documents sent to the commerce storefront API. Cart mutations only
// request the minimal cart fields; callers that need line data fetch the full
// snapshot afterwards.

const queryCartStub = `
query GetCart($id: ID!) {
  cart(id: $id) {
    id
    checkoutUrl
    totalQuantity
  }
}`

const queryCartFull = `
query GetCart($id: ID!) {
  cart(id: $id) {
    id
    checkoutUrl
    totalQuantity
    cost {
      subtotalAmount { amount currencyCode }
      totalAmount { amount currencyCode }
    }
    lines(first: 50) {
      nodes {
        id
        quantity
        merchandise {
          ... on ProductVariant {
            id
            title
            price { amount currencyCode }
            image { url altText }
            product {
              title
              handle
              images(first: 1) { nodes { url } }
            }
          }
        }
      }
    }
  }
}`

const mutationCartCreate = `
mutation CreateCart {
  cartCreate(input: {}) {
    cart { id checkoutUrl totalQuantity }
    userErrors { field message }
  }
}`

const mutationCartLinesAdd = `
mutation AddLines($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart { id checkoutUrl totalQuantity }
    userErrors { field message }
  }
}`

const mutationCartLinesUpdate = `
mutation UpdateLine($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart { id checkoutUrl totalQuantity }
    userErrors { field message }
  }
}`

const mutationCartLinesRemove = `
mutation RemoveLine($cartId: ID!, $lineIds: [ID!]!) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart { id checkoutUrl totalQuantity }
    userErrors { field message }
  }
}`

const queryProductByHandle = `
query Product($handle: String!) {
  product(handle: $handle) {
    id
    title
    handle
    descriptionHtml
    variants(first: 10) {
      nodes {
        id
        title
        availableForSale
        quantityAvailable
        price { amount currencyCode }
      }
    }
    images(first: 10) { nodes { url altText } }
  }
}`
