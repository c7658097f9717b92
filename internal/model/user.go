package model

// User is the account record of the authenticated user.
type User struct {
	ID        int64  `json:"id,omitempty"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Client is the customer record linked to a user. Orders are placed on behalf of a client.
type Client struct {
	ID      int64  `json:"id"`
	Name    string `json:"nombre"`
	Email   string `json:"email"`
	Address string `json:"direccion,omitempty"`
	Photo   string `json:"foto,omitempty"`
}

// Identity is the payload of the current-user endpoint.
type Identity struct {
	User   User    `json:"user"`
	Client *Client `json:"cliente"`
}

// ClientInput is the payload for creating or updating a client.
type ClientInput struct {
	Name    string
	Email   string
	Address string
	Photo   *Upload
}

// Registration is the payload of the register endpoint.
type Registration struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Address   string `json:"direccion"`
}

// LinkRequest associates a new user account with an existing client record.
type LinkRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}
