package models

import "github.com/shopspring/decimal"

type PaymentType string

const (
	PaymentUPI  PaymentType = "UPI"
	PaymentCash PaymentType = "Cash"
)

// SalesRecord is one till transaction. Date is ISO (2006-01-02), Time is a local wall clock (15:04).
type SalesRecord struct {
	Date        string          `json:"date" gorm:"size:10;not null"`
	Time        string          `json:"time" gorm:"size:8"`
	ItemName    string          `json:"itemName" gorm:"size:120;not null"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	PaymentType PaymentType     `json:"paymentType" gorm:"size:10"` // UPI / Cash
	StaffName   string          `json:"staffName" gorm:"size:100"`
}

func (SalesRecord) TableName() string { return "cafe_sales_log" }

// Amount is price × quantity.
func (s SalesRecord) Amount() decimal.Decimal {
	return s.Price.Mul(decimal.NewFromInt(int64(s.Quantity)))
}
