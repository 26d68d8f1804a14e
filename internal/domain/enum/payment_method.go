package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// PaymentMethod represents how a payment (or one allocation of a split
// payment) was settled
type PaymentMethod int

const (
	PaymentMethodEfectivo      PaymentMethod = 0
	PaymentMethodTarjeta       PaymentMethod = 1
	PaymentMethodTransferencia PaymentMethod = 2
)

func (m PaymentMethod) String() string {
	names := [...]string{"efectivo", "tarjeta", "transferencia"}
	if int(m) < 0 || int(m) >= len(names) {
		return "efectivo"
	}
	return names[m]
}

// ParsePaymentMethod maps a wire name to its enum value.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch s {
	case "efectivo":
		return PaymentMethodEfectivo, true
	case "tarjeta":
		return PaymentMethodTarjeta, true
	case "transferencia":
		return PaymentMethodTransferencia, true
	}
	return PaymentMethodEfectivo, false
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*m = PaymentMethod(i)
		return nil
	}
	if parsed, ok := ParsePaymentMethod(str); ok {
		*m = parsed
	}
	return nil
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	if value == nil {
		*m = PaymentMethodEfectivo
		return nil
	}
	switch v := value.(type) {
	case int64:
		*m = PaymentMethod(v)
	case int:
		*m = PaymentMethod(v)
	}
	return nil
}
