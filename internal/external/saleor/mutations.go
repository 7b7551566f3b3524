package saleor

import "context"

const accountRegisterMutation = `
mutation accountRegister(
    $input: AccountRegisterInput!
) {
    accountRegister(input: $input) {
        user { id, email }
        errors { code, field, message }
    }
}
`

const createCheckoutMutation = `
mutation CreateCheckout(
    $input: CheckoutCreateInput!
) {
    checkoutCreate(input: $input) {
        checkout { id }
        errors { message }
    }
}
`

const attachCheckoutCustomerMutation = `
mutation attachCustomer(
    $id: ID, $customerId: ID
) {
    checkoutCustomerAttach(id: $id, customerId: $customerId) {
        checkout { id }
        errors { message }
    }
}
`

const fulfillOrderMutation = `
mutation orderFulfill(
    $input: OrderFulfillInput!
    $order: ID
){
  orderFulfill(input: $input, order: $order) {
    fulfillments {
      created
      status
    }
    errors { field, message }
    }
}
`

const createProductAttributesMutation = `
mutation AttributeBulkCreate(
  $attributes: [AttributeCreateInput!]!
) {
    attributeBulkCreate(attributes: $attributes) {
        results {
            attribute { id, name },
            errors { message, code }
        }
        errors { message, code  }
    }
}
`

const createProductTypeMutation = `
mutation CreateProductType(
    $input: ProductTypeInput!
) {
    productTypeCreate(input: $input) {
        productType { id, name }
        errors { message, code }
    }
}
`

const createCourseProductMutation = `
mutation CreateCourseProduct(
    $input: ProductCreateInput!
) {
    productCreate(input: $input) {
        product { id, name, externalReference }
        errors { message, code, field }
    }
}
`

const updateCourseProductMutation = `
mutation UpdateCourseProduct(
    $id: ID!, $input: ProductInput!
) {
    productUpdate(id: $id, input: $input) {
        product { id, name, externalReference }
        errors { message, code, field }
    }
}
`

// AccountRegisterInput creates a Saleor customer account.
type AccountRegisterInput struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Channel     string `json:"channel,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// CheckoutLineInput adds one variant to a checkout.
type CheckoutLineInput struct {
	Quantity  int    `json:"quantity"`
	VariantID string `json:"variantId"`
}

// CheckoutCreateInput creates a checkout with the given lines.
type CheckoutCreateInput struct {
	Channel string              `json:"channel"`
	Email   string              `json:"email"`
	Lines   []CheckoutLineInput `json:"lines"`
}

// Checkout is a Saleor checkout reference.
type Checkout struct {
	ID string `json:"id"`
}

// FulfillmentStock assigns fulfilled quantity to a warehouse.
type FulfillmentStock struct {
	Quantity  int    `json:"quantity"`
	Warehouse string `json:"warehouse"`
}

// OrderFulfillLine fulfills one order line.
type OrderFulfillLine struct {
	OrderLineID string             `json:"orderLineId"`
	Stocks      []FulfillmentStock `json:"stocks"`
}

// Fulfillment is the record Saleor creates for a fulfilled order.
type Fulfillment struct {
	Created string `json:"created"`
	Status  string `json:"status"`
}

// AttributeCreateInput creates one product attribute.
type AttributeCreateInput struct {
	Name              string `json:"name"`
	ExternalReference string `json:"externalReference,omitempty"`
	Type              string `json:"type"`
	InputType         string `json:"inputType"`
}

// ProductTypeInput creates a product type bound to the given attributes.
type ProductTypeInput struct {
	Name              string   `json:"name"`
	HasVariants       bool     `json:"hasVariants"`
	ProductAttributes []string `json:"productAttributes,omitempty"`
}

// AttributeValueInput sets one attribute value on a product.
type AttributeValueInput struct {
	ID        string   `json:"id,omitempty"`
	PlainText string   `json:"plainText,omitempty"`
	Values    []string `json:"values,omitempty"`
	Boolean   *bool    `json:"boolean,omitempty"`
	DateTime  string   `json:"dateTime,omitempty"`
}

// ProductInput creates or updates a course product.
type ProductInput struct {
	Name              string                `json:"name,omitempty"`
	ProductType       string                `json:"productType,omitempty"`
	ExternalReference string                `json:"externalReference,omitempty"`
	Description       string                `json:"description,omitempty"`
	Attributes        []AttributeValueInput `json:"attributes,omitempty"`
}

// AccountRegister creates a customer account and returns it.
func (c *Client) AccountRegister(ctx context.Context, input AccountRegisterInput) (*User, error) {
	var data struct {
		AccountRegister struct {
			User   *User          `json:"user"`
			Errors []GraphQLError `json:"errors"`
		} `json:"accountRegister"`
	}
	err := c.execute(ctx, "accountRegister", accountRegisterMutation, map[string]any{"input": input}, &data)
	if err != nil {
		return nil, err
	}
	if err := payloadErrors("accountRegister", data.AccountRegister.Errors); err != nil {
		return nil, err
	}
	return data.AccountRegister.User, nil
}

// CreateCheckout creates a checkout and returns its reference.
func (c *Client) CreateCheckout(ctx context.Context, input CheckoutCreateInput) (*Checkout, error) {
	var data struct {
		CheckoutCreate struct {
			Checkout *Checkout      `json:"checkout"`
			Errors   []GraphQLError `json:"errors"`
		} `json:"checkoutCreate"`
	}
	err := c.execute(ctx, "checkoutCreate", createCheckoutMutation, map[string]any{"input": input}, &data)
	if err != nil {
		return nil, err
	}
	if err := payloadErrors("checkoutCreate", data.CheckoutCreate.Errors); err != nil {
		return nil, err
	}
	return data.CheckoutCreate.Checkout, nil
}

// AttachCheckoutCustomer binds the checkout to the customer account.
func (c *Client) AttachCheckoutCustomer(ctx context.Context, checkoutID, customerID string) (*Checkout, error) {
	var data struct {
		CheckoutCustomerAttach struct {
			Checkout *Checkout      `json:"checkout"`
			Errors   []GraphQLError `json:"errors"`
		} `json:"checkoutCustomerAttach"`
	}
	variables := map[string]any{"id": checkoutID, "customerId": customerID}
	err := c.execute(ctx, "checkoutCustomerAttach", attachCheckoutCustomerMutation, variables, &data)
	if err != nil {
		return nil, err
	}
	if err := payloadErrors("checkoutCustomerAttach", data.CheckoutCustomerAttach.Errors); err != nil {
		return nil, err
	}
	return data.CheckoutCustomerAttach.Checkout, nil
}

// FulfillOrder marks the order's lines as fulfilled.
func (c *Client) FulfillOrder(ctx context.Context, orderID string, lines []OrderFulfillLine) ([]Fulfillment, error) {
	var data struct {
		OrderFulfill struct {
			Fulfillments []Fulfillment  `json:"fulfillments"`
			Errors       []GraphQLError `json:"errors"`
		} `json:"orderFulfill"`
	}
	variables := map[string]any{
		"order": orderID,
		"input": map[string]any{"lines": lines},
	}
	err := c.execute(ctx, "orderFulfill", fulfillOrderMutation, variables, &data)
	if err != nil {
		return nil, err
	}
	if err := payloadErrors("orderFulfill", data.OrderFulfill.Errors); err != nil {
		return nil, err
	}
	return data.OrderFulfill.Fulfillments, nil
}

// CreateProductAttributes bulk-creates product attributes and returns the
// created ones. Per-attribute errors are aggregated into a single *APIError.
func (c *Client) CreateProductAttributes(ctx context.Context, attributes []AttributeCreateInput) ([]NamedNode, error) {
	var data struct {
		AttributeBulkCreate struct {
			Results []struct {
				Attribute *NamedNode     `json:"attribute"`
				Errors    []GraphQLError `json:"errors"`
			} `json:"results"`
			Errors []GraphQLError `json:"errors"`
		} `json:"attributeBulkCreate"`
	}
	err := c.execute(ctx, "attributeBulkCreate", createProductAttributesMutation, map[string]any{"attributes": attributes}, &data)
	if err != nil {
		return nil, err
	}

	errs := data.AttributeBulkCreate.Errors
	created := make([]NamedNode, 0, len(data.AttributeBulkCreate.Results))
	for _, result := range data.AttributeBulkCreate.Results {
		errs = append(errs, result.Errors...)
		if result.Attribute != nil {
			created = append(created, *result.Attribute)
		}
	}
	if err := payloadErrors("attributeBulkCreate", errs); err != nil {
		return created, err
	}
	return created, nil
}

// CreateProductType creates a product type.
func (c *Client) CreateProductType(ctx context.Context, input ProductTypeInput) (*NamedNode, error) {
	var data struct {
		ProductTypeCreate struct {
			ProductType *NamedNode     `json:"productType"`
			Errors      []GraphQLError `json:"errors"`
		} `json:"productTypeCreate"`
	}
	err := c.execute(ctx, "productTypeCreate", createProductTypeMutation, map[string]any{"input": input}, &data)
	if err != nil {
		return nil, err
	}
	if err := payloadErrors("productTypeCreate", data.ProductTypeCreate.Errors); err != nil {
		return nil, err
	}
	return data.ProductTypeCreate.ProductType, nil
}

// CreateCourseProduct creates a product representing one course.
func (c *Client) CreateCourseProduct(ctx context.Context, input ProductInput) (*Product, error) {
	var data struct {
		ProductCreate struct {
			Product *Product       `json:"product"`
			Errors  []GraphQLError `json:"errors"`
		} `json:"productCreate"`
	}
	err := c.execute(ctx, "productCreate", createCourseProductMutation, map[string]any{"input": input}, &data)
	if err != nil {
		return nil, err
	}
	if err := payloadErrors("productCreate", data.ProductCreate.Errors); err != nil {
		return nil, err
	}
	return data.ProductCreate.Product, nil
}

// UpdateCourseProduct updates an existing course product.
func (c *Client) UpdateCourseProduct(ctx context.Context, productID string, input ProductInput) (*Product, error) {
	var data struct {
		ProductUpdate struct {
			Product *Product       `json:"product"`
			Errors  []GraphQLError `json:"errors"`
		} `json:"productUpdate"`
	}
	variables := map[string]any{"id": productID, "input": input}
	err := c.execute(ctx, "productUpdate", updateCourseProductMutation, variables, &data)
	if err != nil {
		return nil, err
	}
	if err := payloadErrors("productUpdate", data.ProductUpdate.Errors); err != nil {
		return nil, err
	}
	return data.ProductUpdate.Product, nil
}
