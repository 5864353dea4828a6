package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	EGP  Currency = "EGP"
	USD  Currency = "USD"
	EUR  Currency = "EUR"
	GBP  Currency = "GBP"
	VISA Currency = "VISA"
)

const (
	Cash       PaymentMethod = "cash"
	CreditCard PaymentMethod = "credit_card"
	Online     PaymentMethod = "online"
	OnCredit   PaymentMethod = "credit"
)

const (
	Paid       PaymentStatus = "paid"
	CreditOwed PaymentStatus = "credit"
)

const (
	Daily   RecurrencePeriod = "daily"
	Weekly  RecurrencePeriod = "weekly"
	Monthly RecurrencePeriod = "monthly"
	Yearly  RecurrencePeriod = "yearly"
)

type (
	TransactionType  string
	Currency         string
	PaymentMethod    string
	PaymentStatus    string
	RecurrencePeriod string
	Role             string

	// Transaction is one income or expense ledger entry in a single currency.
	// Amounts are kept currency-local; no conversion is ever persisted.
	Transaction struct {
		ID              string
		Type            TransactionType
		Category        string
		Subcategory     string
		Amount          Money
		Currency        Currency
		PaymentMethod   PaymentMethod
		Status          PaymentStatus
		Description     string
		Date            time.Time
		CreatedBy       string // username, immutable after create
		Recurring       bool
		RecurringPeriod RecurrencePeriod // empty unless Recurring
	}

	User struct {
		ID           int64
		Username     string
		PasswordHash string
		Name         string
		Role         Role
	}
)

const (
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
	RoleOffice Role = "office"
)

var (
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCurrency = errors.New("invalid currency")
	ErrInvalidPayment  = errors.New("invalid payment method")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPeriod   = errors.New("invalid recurring period")
	ErrEmptyCategory   = errors.New("empty category")
	ErrZeroDate        = errors.New("date cannot be zero")
	ErrStrayPeriod     = errors.New("recurring period set on non-recurring transaction")
)

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (c Currency) Valid() bool {
	switch c {
	case EGP, USD, EUR, GBP, VISA:
		return true
	}
	return false
}

func (p PaymentMethod) Valid() bool {
	switch p {
	case Cash, CreditCard, Online, OnCredit:
		return true
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	return s == Paid || s == CreditOwed
}

func (p RecurrencePeriod) Valid() bool {
	switch p {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// Validate checks the invariants a transaction must satisfy before it is
// persisted. Optional enum fields are only checked when present so that a
// minimal create request (type, category, amount) stays valid.
func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Currency != "" && !t.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if t.PaymentMethod != "" && !t.PaymentMethod.Valid() {
		return ErrInvalidPayment
	}
	if t.Status != "" && !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	if t.Recurring {
		if !t.RecurringPeriod.Valid() {
			return ErrInvalidPeriod
		}
	} else if t.RecurringPeriod != "" {
		return ErrStrayPeriod
	}
	return nil
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleOwner || r == RoleOffice
}
