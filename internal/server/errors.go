package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"budgettracker/internal/tracker"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var registerOnce sync.Once

// registerJSONFieldNames makes binding errors report json field names.
func registerJSONFieldNames() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(func(fld reflect.StructField) string {
				name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
				if name == "-" {
					return ""
				}
				return name
			})
		}
	})
}

// writeError maps an error onto a {message, field?} response. Unexpected
// errors are attached to the context for the request log and hidden.
func writeError(c *gin.Context, err error) {
	var ve *tracker.ValidationError
	var nf *tracker.NotFoundError
	switch {
	case errors.As(err, &ve):
		body := gin.H{"message": ve.Reason}
		if ve.Field != "" {
			body["field"] = ve.Field
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, tracker.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	case errors.Is(err, tracker.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email already used"})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"message": nf.Error()})
	case errors.Is(err, tracker.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// amountJSON is a money field of a request body. It accepts a JSON number or
// a numeric string; anything else fails as a type error naming the field.
type amountJSON struct {
	decimal.Decimal
}

func (a *amountJSON) UnmarshalJSON(b []byte) error {
	if err := a.Decimal.UnmarshalJSON(b); err != nil {
		return &json.UnmarshalTypeError{Value: string(b), Type: decimalType}
	}
	return nil
}

func (a *amountJSON) value() *decimal.Decimal {
	if a == nil {
		return nil
	}
	d := a.Decimal
	return &d
}

// bindJSON decodes the body into dst and writes a 400 when it cannot.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &verrs) && len(verrs) > 0:
		fe := verrs[0]
		reason := fe.Field() + " is invalid"
		if fe.Tag() == "required" {
			reason = fe.Field() + " is required"
		}
		writeError(c, &tracker.ValidationError{Field: fe.Field(), Reason: reason})
	case errors.As(err, &typeErr) && typeErr.Field != "":
		reason := typeErr.Field + " has the wrong type"
		if typeErr.Type == decimalType {
			reason = typeErr.Field + " must be a number"
		}
		writeError(c, &tracker.ValidationError{Field: typeErr.Field, Reason: reason})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
	}
	return false
}

// pathID parses the :id parameter. A malformed id cannot name any row, so
// it is answered as not found.
func pathID(c *gin.Context, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": resource + " not found"})
		return uuid.Nil, false
	}
	return id, true
}
