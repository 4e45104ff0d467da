package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pkgerrors "rating-user-service/pkg/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail any    `json:"detail"`
}

// FieldErrorResponse describes one rejected input field.
type FieldErrorResponse struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// writeError converts usecase errors to HTTP responses using their gRPC code.
func writeError(c *gin.Context, err error) {
	var verr *pkgerrors.ValidationError
	if errors.As(err, &verr) {
		detail := make([]FieldErrorResponse, len(verr.Fields))
		for i, f := range verr.Fields {
			detail[i] = FieldErrorResponse{Loc: f.Location, Msg: f.Message, Type: f.Type}
		}
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation_error", Detail: detail})
		return
	}

	switch pkgerrors.Code(err) {
	case codes.AlreadyExists:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "conflict", Detail: err.Error()})
	case codes.FailedPrecondition:
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "service_unavailable", Detail: statusMessage(err)})
	case codes.Unavailable:
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "bad_gateway", Detail: statusMessage(err)})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Detail: "internal server error"})
	}
}

func statusMessage(err error) string {
	if s, ok := status.FromError(err); ok {
		return s.Message()
	}
	return err.Error()
}

// bindError converts a JSON decoding failure into a ValidationError.
func bindError(err error) *pkgerrors.ValidationError {
	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)

	switch {
	case errors.Is(err, io.EOF):
		return pkgerrors.NewValidationError([]string{"body"}, "request body is required", pkgerrors.TypeMissing)
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return pkgerrors.NewValidationError(
			[]string{"body", typeErr.Field},
			typeErr.Field+" must be "+jsonKind(typeErr.Type),
			pkgerrors.TypeType,
		)
	case errors.As(err, &typeErr):
		return pkgerrors.NewValidationError([]string{"body"}, "request body must be a JSON object", pkgerrors.TypeType)
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return pkgerrors.NewValidationError([]string{"body"}, "request body is not valid JSON", pkgerrors.TypeValue)
	default:
		return pkgerrors.NewValidationError([]string{"body"}, err.Error(), pkgerrors.TypeValue)
	}
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "valid"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	default:
		return "valid"
	}
}
