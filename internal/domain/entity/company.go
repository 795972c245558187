package entity

// CompanyProfile is the single business identity printed on every invoice
type CompanyProfile struct {
	Name    string `json:"name" validate:"required,max=200"`
	GSTIN   string `json:"gstin" validate:"omitempty,len=15,alphanum"`
	Address string `json:"address" validate:"max=1000"`
	Phone   string `json:"phone" validate:"max=30"`
	Email   string `json:"email" validate:"omitempty,email"`
	Logo    string `json:"logo,omitempty"` // data:image/png;base64,... or empty
}

// HasLogo reports whether a logo image is stored
func (c *CompanyProfile) HasLogo() bool {
	return c != nil && c.Logo != ""
}
