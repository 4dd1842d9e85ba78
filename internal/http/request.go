package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"finanzas/internal/core"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		_, err := core.ParseDecimalToCents(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(core.DateLayout, fl.Field().String())
		return err == nil
	})
	return v
}

func validationDetails(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field()] = fieldErrorToString(e)
	}
	return out
}

func fieldErrorToString(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "money":
		return "must be a positive decimal amount"
	case "date":
		return "must be in YYYY-MM-DD format"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of " + e.Param()
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "gt", "gte", "lt", "lte":
		return fmt.Sprintf("must be %s %s", e.Tag(), e.Param())
	default:
		return "is invalid"
	}
}

// decodeJSON reads a single JSON object into dst and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &badRequest{msg: "request body too large"}
		}
		if errors.Is(err, io.EOF) {
			return &badRequest{msg: "request body is empty"}
		}
		return &badRequest{msg: "invalid JSON: " + err.Error()}
	}
	if dec.More() {
		return &badRequest{msg: "request body must contain a single JSON object"}
	}
	return validate.Struct(dst)
}

// Amount accepts a JSON string ("12.34", "12,34") or number (12.34).
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or number")
	}
	*a = Amount(n.String())
	return nil
}

// money parses a required positive amount.
func (a Amount) money(field string) (core.Money, error) {
	m, err := core.ParseMoney(string(a))
	if err != nil {
		return core.Money{}, &core.ValidationError{Field: field, Err: err}
	}
	return m, nil
}

// optionalMoney parses a limit or budget where empty or zero means none.
func (a Amount) optionalMoney(field string) (core.Money, error) {
	s := strings.TrimSpace(string(a))
	if strings.Trim(s, "0.,") == "" {
		return core.Money{}, nil
	}
	return a.money(field)
}

func parseDate(field, s string) (core.Date, error) {
	d, err := core.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return core.Date{}, &core.ValidationError{Field: field, Err: err}
	}
	return d, nil
}

// pathID reads the {id} route variable.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, &badRequest{msg: "invalid id"}
	}
	return id, nil
}

func queryInt(q url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &core.ValidationError{Field: key, Err: errors.New("must be an integer")}
	}
	return n, nil
}

// periodParams reads year and month, defaulting to the current month.
func periodParams(q url.Values, now time.Time) (core.Period, error) {
	year, err := queryInt(q, "year", now.Year())
	if err != nil {
		return core.Period{}, err
	}
	month, err := queryInt(q, "month", int(now.Month()))
	if err != nil {
		return core.Period{}, err
	}
	p := core.Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return core.Period{}, &core.ValidationError{Field: "month", Err: err}
	}
	return p, nil
}

// optionalPeriod is like periodParams but returns the zero period when
// neither year nor month is given.
func optionalPeriod(q url.Values, now time.Time) (core.Period, error) {
	if q.Get("year") == "" && q.Get("month") == "" {
		return core.Period{}, nil
	}
	return periodParams(q, now)
}

// transactionFilter builds the unified view filter from the query string.
func transactionFilter(q url.Values, userID int64) (core.TransactionFilter, error) {
	f := core.TransactionFilter{
		UserID: userID,
		Query:  q.Get("q"),
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
	}
	var err error

	if v := q.Get("kind"); v != "" {
		if f.Kind, err = core.ParseKind(v); err != nil {
			return f, &core.ValidationError{Field: "kind", Err: err}
		}
	}
	if v := q.Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, &core.ValidationError{Field: "category_id", Err: core.ErrInvalidCategory}
		}
		f.CategoryID = &id
	}
	if f.From, err = parseDate("from", q.Get("from")); err != nil {
		return f, err
	}
	if f.To, err = parseDate("to", q.Get("to")); err != nil {
		return f, err
	}
	if v := q.Get("min_amount"); v != "" {
		if f.MinAmount, err = Amount(v).money("min_amount"); err != nil {
			return f, err
		}
	}
	if v := q.Get("max_amount"); v != "" {
		if f.MaxAmount, err = Amount(v).money("max_amount"); err != nil {
			return f, err
		}
	}
	if f.Limit, err = queryInt(q, "limit", core.DefaultLimit); err != nil {
		return f, err
	}
	if f.Offset, err = queryInt(q, "offset", 0); err != nil {
		return f, err
	}
	return f, nil
}
