package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
)

const dateLayout = "2006-01-02"

// filterQuery is the user-supplied form of a models.Filter.
type filterQuery struct {
	From          string   `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To            string   `json:"to" validate:"omitempty,datetime=2006-01-02"`
	Regions       []string `json:"regions" validate:"omitempty,dive,max=256"`
	CustomerTypes []string `json:"customerTypes" validate:"omitempty,dive,max=256"`
	TopN          int      `json:"topN" validate:"gte=0,lte=1000"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func queryFromRequest(r *http.Request) (filterQuery, error) {
	q := r.URL.Query()
	fq := filterQuery{
		From:          strings.TrimSpace(q.Get("from")),
		To:            strings.TrimSpace(q.Get("to")),
		Regions:       nonEmpty(q["region"]),
		CustomerTypes: nonEmpty(q["customer_type"]),
	}
	if s := q.Get("top_n"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return fq, errors.Validation("invalid query parameters").WithDetails([]fieldError{
				{Field: "top_n", Message: "must be an integer"},
			})
		}
		fq.TopN = n
	}
	return fq, nil
}

// toFilter validates fq and converts it. topN falls back to defaultTopN when
// the query leaves it unset.
func (fq filterQuery) toFilter(defaultTopN int) (models.Filter, int, error) {
	if err := validate.Struct(fq); err != nil {
		return models.Filter{}, 0, validationError(err)
	}

	f := models.Filter{
		Regions:       nonEmpty(fq.Regions),
		CustomerTypes: nonEmpty(fq.CustomerTypes),
	}
	if fq.From != "" {
		f.From, _ = time.Parse(dateLayout, fq.From)
	}
	if fq.To != "" {
		f.To, _ = time.Parse(dateLayout, fq.To)
	}

	topN := fq.TopN
	if topN == 0 {
		topN = defaultTopN
	}
	return f, topN, nil
}

func parseFilter(r *http.Request, defaultTopN int) (models.Filter, int, error) {
	fq, err := queryFromRequest(r)
	if err != nil {
		return models.Filter{}, 0, err
	}
	return fq.toFilter(defaultTopN)
}

func validationError(err error) *errors.AppError {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.ValidationWrap(err, "invalid query parameters")
	}
	details := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fieldError{
			Field:   fe.Field(),
			Message: "failed " + fe.Tag() + " check",
		})
	}
	return errors.Validation("invalid query parameters").WithDetails(details)
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
