package saleor

// OrderFullyPaidSubscription is the webhook subscription document registered
// through the app manifest. Saleor evaluates it against the ORDER_FULLY_PAID
// event and delivers the selected order shape to the webhook endpoint.
const OrderFullyPaidSubscription = `
subscription {
    event {
    ... on OrderFullyPaid {
            order {
                id
                number
                status
                isPaid
                lines {
                    id
                    quantity
                    variant {
                        name
                        product {
                            name
                            externalReference
                        }
                    }
                }
                user { id, email }
            }
        }
    }
}
`
