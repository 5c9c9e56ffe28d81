package shelf

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"libraryexplorer/internal/httpx"
	"libraryexplorer/internal/metrics"
)

// PaymentOptions are the accepted payment methods for a submission.
var PaymentOptions = []string{"PayPal", "Credit Card", "Google Pay", "Apple Pay", "BaridiMob"}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("payment_method", validatePaymentMethod)
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	v := fl.Field().String()
	for _, opt := range PaymentOptions {
		if v == opt {
			return true
		}
	}
	return false
}

type submitRequest struct {
	Title          string   `json:"title" validate:"required,max=200"`
	Author         string   `json:"author" validate:"required,max=200"`
	Description    string   `json:"description" validate:"max=5000"`
	Price          float64  `json:"price" validate:"required,gt=0"`
	PaymentMethods []string `json:"payment_methods" validate:"dive,payment_method"`
	CoverImageURL  string   `json:"cover_image_url" validate:"omitempty,url"`
}

func validationDetails(err error) []httpx.ErrorDetail {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	var details []httpx.ErrorDetail
	for _, ve := range verrs {
		field := strings.ToLower(ve.Field()[:1]) + ve.Field()[1:]
		var message string
		switch ve.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", field, ve.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, ve.Param())
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", field)
		case "payment_method":
			message = fmt.Sprintf("%s must be one of: %s", field, strings.Join(PaymentOptions, ", "))
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}
		details = append(details, httpx.ErrorDetail{Field: field, Message: message})
	}
	return details
}

// HTTPHandler exposes the submitted-books shelf.
type HTTPHandler struct {
	store   *Store
	metrics *metrics.Registry
}

func NewHTTPHandler(store *Store, m *metrics.Registry) *HTTPHandler {
	return &HTTPHandler{store: store, metrics: m}
}

// Submit handles POST /books: a new self-published book enters the review
// pipeline in pending state.
func (h *HTTPHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.JSONError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Please fill out Title, Author, and Price.", validationDetails(err))
		return
	}

	book, err := h.store.Submit(Submission{
		Title:          req.Title,
		Author:         req.Author,
		Description:    req.Description,
		Price:          req.Price,
		PaymentMethods: req.PaymentMethods,
		CoverImageURL:  req.CoverImageURL,
	})
	if err != nil {
		httpx.JSONError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	if h.metrics != nil {
		h.metrics.Submissions.Inc()
	}
	httpx.JSONSuccessCreated(w, r, book)
}

// List handles GET /books: every user submission, newest first.
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	books := h.store.All()
	httpx.JSONSuccess(w, r, books, map[string]interface{}{"total": len(books)})
}
