package fakturoid

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type tokenRequest struct {
	GrantType string `json:"grant_type"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type userDTO struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type subjectDTO struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	RegistrationNo string `json:"registration_no"`
}

type invoiceDTO struct {
	ID         int64   `json:"id"`
	Number     string  `json:"number"`
	SubjectID  int64   `json:"subject_id"`
	ClientName string  `json:"client_name"`
	Status     string  `json:"status"`
	IssuedOn   string  `json:"issued_on"`
	Due        int     `json:"due"`
	Total      decimal `json:"total"`
	Currency   string  `json:"currency"`
	URLs       struct {
		PDF string `json:"pdf"`
	} `json:"urls"`
}

type lineDTO struct {
	Name      string  `json:"name"`
	Quantity  float64 `json:"quantity"`
	UnitName  string  `json:"unit_name"`
	UnitPrice float64 `json:"unit_price"`
}

type createInvoiceRequest struct {
	SubjectID int64     `json:"subject_id"`
	IssuedOn  string    `json:"issued_on"`
	Due       int       `json:"due"`
	Lines     []lineDTO `json:"lines"`
}

type fireRequest struct {
	Event string `json:"event"`
}

type paymentRequest struct {
	PaidOn string `json:"paid_on"`
}

// decimal accepts amounts sent either as JSON numbers or as numeric strings.
type decimal float64

func (d *decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*d = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*d = decimal(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*d = decimal(f)
	return nil
}
