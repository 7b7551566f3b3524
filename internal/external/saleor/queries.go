package saleor

import "context"

const getUserQuery = `
query getUser($email: String){
    user(email: $email) {
        id
        email
        externalReference
    }
}
`

const getProductVariantQuery = `
query getProductVariant($sku: String){
    productVariant(sku: $sku) {
        id
        sku
        name
    }
}
`

const getProductQuery = `
query getProduct($externalReference: String){
    product(externalReference: $externalReference) {
        id
        name
        externalReference
    }
}
`

const getAttributesQuery = `
query getAttributes(
    $limit: Int
) {
    attributes(first: $limit) {
        edges {
            node { id, name }
        }
    }
}
`

const getProductTypesQuery = `
query getProductTypes(
    $limit: Int
) {
    productTypes(first: $limit) {
        edges {
            node { id, name }
        }
    }
}
`

const getWarehousesQuery = `
query getWarehouses(
    $limit: Int
) {
    warehouses(first: $limit) {
        edges {
            node { id, name }
        }
    }
}
`

// User is a Saleor customer account.
type User struct {
	ID                string `json:"id"`
	Email             string `json:"email"`
	ExternalReference string `json:"externalReference"`
}

// ProductVariant is a purchasable variant of a product.
type ProductVariant struct {
	ID   string `json:"id"`
	SKU  string `json:"sku"`
	Name string `json:"name"`
}

// Product is a Saleor product; for course products the external reference
// carries the course key.
type Product struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	ExternalReference string `json:"externalReference"`
}

// NamedNode is an id/name pair returned by list queries.
type NamedNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// connection unwraps relay-style edges/node pagination.
type connection[T any] struct {
	Edges []struct {
		Node T `json:"node"`
	} `json:"edges"`
}

func (c connection[T]) nodes() []T {
	nodes := make([]T, 0, len(c.Edges))
	for _, edge := range c.Edges {
		nodes = append(nodes, edge.Node)
	}
	return nodes
}

// GetUserByEmail returns the Saleor account for the email, or nil when no
// account exists.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var data struct {
		User *User `json:"user"`
	}
	err := c.execute(ctx, "getUser", getUserQuery, map[string]any{"email": email}, &data)
	if err != nil {
		return nil, err
	}
	return data.User, nil
}

// GetProductVariant returns the variant with the SKU, or nil when none exists.
func (c *Client) GetProductVariant(ctx context.Context, sku string) (*ProductVariant, error) {
	var data struct {
		ProductVariant *ProductVariant `json:"productVariant"`
	}
	err := c.execute(ctx, "getProductVariant", getProductVariantQuery, map[string]any{"sku": sku}, &data)
	if err != nil {
		return nil, err
	}
	return data.ProductVariant, nil
}

// GetProductByExternalRef returns the product whose external reference is the
// given course key, or nil when none exists.
func (c *Client) GetProductByExternalRef(ctx context.Context, externalRef string) (*Product, error) {
	var data struct {
		Product *Product `json:"product"`
	}
	err := c.execute(ctx, "getProduct", getProductQuery, map[string]any{"externalReference": externalRef}, &data)
	if err != nil {
		return nil, err
	}
	return data.Product, nil
}

// GetAttributes lists up to limit product attributes.
func (c *Client) GetAttributes(ctx context.Context, limit int) ([]NamedNode, error) {
	var data struct {
		Attributes connection[NamedNode] `json:"attributes"`
	}
	err := c.execute(ctx, "getAttributes", getAttributesQuery, map[string]any{"limit": limit}, &data)
	if err != nil {
		return nil, err
	}
	return data.Attributes.nodes(), nil
}

// GetProductTypes lists up to limit product types.
func (c *Client) GetProductTypes(ctx context.Context, limit int) ([]NamedNode, error) {
	var data struct {
		ProductTypes connection[NamedNode] `json:"productTypes"`
	}
	err := c.execute(ctx, "getProductTypes", getProductTypesQuery, map[string]any{"limit": limit}, &data)
	if err != nil {
		return nil, err
	}
	return data.ProductTypes.nodes(), nil
}

// GetWarehouses lists up to limit warehouses.
func (c *Client) GetWarehouses(ctx context.Context, limit int) ([]NamedNode, error) {
	var data struct {
		Warehouses connection[NamedNode] `json:"warehouses"`
	}
	err := c.execute(ctx, "getWarehouses", getWarehousesQuery, map[string]any{"limit": limit}, &data)
	if err != nil {
		return nil, err
	}
	return data.Warehouses.nodes(), nil
}
