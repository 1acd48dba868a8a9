package dto

type VerifyBrandRequest struct {
	Verified bool `json:"verified"`
}
