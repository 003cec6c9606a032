package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/arolux/auth-service/pkg/cryptox"
	"github.com/arolux/auth-service/pkg/httpx"
	"github.com/arolux/auth-service/pkg/slogx"
	"github.com/go-playground/validator/v10"
)

// maxBodyBytes bounds request bodies; nothing this service accepts is large.
const maxBodyBytes = 1 << 20

var validate = newValidator()

var (
	countryCodeRe = regexp.MustCompile(`^\+\d{1,4}$`)
	phoneNumberRe = regexp.MustCompile(`^\d{7,15}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Country calling code: "+" followed by 1-4 digits.
	_ = v.RegisterValidation("countrycode", func(fl validator.FieldLevel) bool {
		return countryCodeRe.MatchString(fl.Field().String())
	})

	// National number: 7-15 digits, no punctuation.
	_ = v.RegisterValidation("phonenum", func(fl validator.FieldLevel) bool {
		return phoneNumberRe.MatchString(fl.Field().String())
	})

	return v
}

// decodeAndValidate parses the JSON body into dst and runs struct validation.
// The returned error message is safe to show to clients.
func decodeAndValidate(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return errors.New("Invalid request body")
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("Invalid value for field '%s'", fieldName(verrs[0]))
		}
		return errors.New("Invalid request body")
	}
	return nil
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return "body"
	}
	// Mirror the JSON casing clients see.
	return strings.ToLower(name[:1]) + name[1:]
}

// encryptedBody is the wrapper RSA-encrypted requests arrive in.
type encryptedBody struct {
	Data string `json:"data"`
}

// DecryptBody swaps an RSA-encrypted request body for its plaintext before
// the handler runs. A nil decryptor passes bodies through untouched, which
// keeps local development keyless.
func DecryptBody(dec *cryptox.BodyDecryptor) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if dec == nil {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil {
				httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
				return
			}

			var wrapper encryptedBody
			if err := json.Unmarshal(raw, &wrapper); err != nil || wrapper.Data == "" {
				httpx.Fail(w, http.StatusBadRequest, "Encrypted payload required")
				return
			}

			plain, err := dec.Decrypt(wrapper.Data)
			if err != nil {
				slogx.FromContext(r.Context()).Warn("failed to decrypt request body")
				httpx.Fail(w, http.StatusBadRequest, "Encrypted payload required")
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(plain))
			r.ContentLength = int64(len(plain))
			next.ServeHTTP(w, r)
		})
	}
}
