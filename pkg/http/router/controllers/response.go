package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/osmrouter/pkg/engine/routing"
	"github.com/lintang-b-s/osmrouter/pkg/http/usecases"
	"github.com/lintang-b-s/osmrouter/pkg/util"
	"go.uber.org/zap"
)

type envelope map[string]any

const (
	CODE_BAD_REQUEST    = "BAD_REQUEST"
	CODE_NO_NEARBY_ROAD = "NO_NEARBY_ROAD"
	CODE_UNREACHABLE    = "UNREACHABLE"
	CODE_QUERY_TIMEOUT  = "QUERY_TIMEOUT"
	CODE_NOT_FOUND      = "NOT_FOUND"
	CODE_INTERNAL_ERROR = "INTERNAL_SERVER_ERROR"
)

type requestValidator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func newRequestValidator() *requestValidator {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	return &requestValidator{validate: validate, trans: trans}
}

// Struct. nil or an error listing every translated validation failure.
func (rv *requestValidator) Struct(s any) error {
	err := rv.validate.Struct(s)
	if err == nil {
		return nil
	}
	vv := translateError(err, rv.trans)
	vvString := []string{}
	for _, v := range vv {
		vvString = append(vvString, v.Error())
	}
	return fmt.Errorf("validation error: %v", vvString)
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}

// classifyError. http status & error code for an error coming out of the routing service.
func classifyError(err error) (int, string, string) {
	message := err.Error()
	var uerr *util.Error
	if errors.As(err, &uerr) {
		message = uerr.Message()
	}

	switch {
	case errors.Is(err, usecases.ErrNoNearbyRoad):
		return http.StatusNotFound, CODE_NO_NEARBY_ROAD, message
	case errors.Is(err, routing.ErrUnreachable):
		return http.StatusNotFound, CODE_UNREACHABLE, message
	case errors.Is(err, routing.ErrQueryCancelled):
		return http.StatusGatewayTimeout, CODE_QUERY_TIMEOUT, message
	}

	if uerr == nil {
		return http.StatusInternalServerError, CODE_INTERNAL_ERROR, util.MessageInternalServerError
	}
	switch uerr.Code() {
	case util.ErrBadParamInput:
		return http.StatusBadRequest, CODE_BAD_REQUEST, message
	case util.ErrNotFound:
		return http.StatusNotFound, CODE_NOT_FOUND, message
	case util.ErrTimeout:
		return http.StatusGatewayTimeout, CODE_QUERY_TIMEOUT, message
	default:
		return http.StatusInternalServerError, CODE_INTERNAL_ERROR, util.MessageInternalServerError
	}
}

func errorEnvelope(code, message string) envelope {
	return envelope{"error": map[string]string{
		"code":    code,
		"message": message,
	}}
}

func (api *routingAPI) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func (api *routingAPI) errorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	if err := api.writeJSON(w, status, errorEnvelope(code, message), nil); err != nil {
		api.log.Error("failed to write error response", zap.Error(err), zap.String("path", r.URL.Path))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (api *routingAPI) BadRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.errorResponse(w, r, http.StatusBadRequest, CODE_BAD_REQUEST, err.Error())
}

func (api *routingAPI) ServerErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	api.log.Error("internal server error", zap.Error(err), zap.String("method", r.Method), zap.String("path", r.URL.Path))
	api.errorResponse(w, r, http.StatusInternalServerError, CODE_INTERNAL_ERROR, util.MessageInternalServerError)
}

// getStatusCode. writes the error response matching err.
func (api *routingAPI) getStatusCode(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classifyError(err)
	if status == http.StatusInternalServerError {
		api.log.Error("request failed", zap.Error(err), zap.String("path", r.URL.Path))
	}
	api.errorResponse(w, r, status, code, message)
}
