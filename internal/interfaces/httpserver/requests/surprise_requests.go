package requests

// VerifyPasswordRequest is the JSON body of the verify-password endpoint.
type VerifyPasswordRequest struct {
	Password string `json:"password"`
}

// Multipart form fields of the create endpoint.
const (
	FormFieldFile     = "file"
	FormFieldMessage  = "message"
	FormFieldPassword = "password"
)
