package relay

import (
	"unicode/utf8"

	"gatekey/internal/domain"
)

// Relay endpoint paths.
const (
	PathEncrypt = "/encrypt"
	PathDecrypt = "/decrypt"
	PathPKPAuth = "/pkp/authenticate"
	PathHealth  = "/healthz"
)

// EncryptRequest is the body of POST /encrypt. Clients send the plaintext
// as bodyBase64; body is accepted for text-only callers.
type EncryptRequest struct {
	domain.Forest
	Body       string `json:"body,omitempty"`
	BodyBase64 []byte `json:"bodyBase64,omitempty"`
}

// Plaintext prefers the base64 form, which carries arbitrary bytes.
func (r EncryptRequest) Plaintext() []byte {
	if r.BodyBase64 != nil {
		return r.BodyBase64
	}
	return []byte(r.Body)
}

// DecryptRequest is the body of POST /decrypt.
type DecryptRequest struct {
	AuthSig          domain.AuthProof        `json:"authSig"`
	Chain            string                  `json:"chain"`
	EncryptedContent domain.EncryptedContent `json:"encryptedContent"`
}

// DecryptResponse carries the plaintext. ResultBase64 is always set;
// Result repeats it as text when the plaintext is valid UTF-8.
type DecryptResponse struct {
	Result       string `json:"result,omitempty"`
	ResultBase64 []byte `json:"resultBase64"`
}

// NewDecryptResponse fills both forms from pt.
func NewDecryptResponse(pt []byte) DecryptResponse {
	resp := DecryptResponse{ResultBase64: pt}
	if utf8.Valid(pt) {
		resp.Result = string(pt)
	}
	return resp
}

// Plaintext prefers the base64 form.
func (r DecryptResponse) Plaintext() []byte {
	if r.ResultBase64 != nil {
		return r.ResultBase64
	}
	return []byte(r.Result)
}
