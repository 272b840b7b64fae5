package store

import (
	"errors"
	"fmt"
)

// Business-rule failures carry the user-facing messages of the
// storefront, which is localized in Portuguese.
var (
	ErrDuplicateEmail     = errors.New("Email já cadastrado")
	ErrInvalidCredentials = errors.New("Email ou senha incorretos")
	ErrEmptyCart          = errors.New("Carrinho vazio")
	ErrNoPaymentMethod    = errors.New("Forma de pagamento não informada")
	ErrUserNotFound       = errors.New("Usuário não encontrado")
	ErrProductNotFound    = errors.New("Produto não encontrado")
	ErrOrderNotFound      = errors.New("Pedido não encontrado")
	ErrInvalidTransition  = errors.New("Transição de status inválida")
)

type InsufficientStockError struct {
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente para %s (tem %d)", e.ProductName, e.Available)
}

// IsBusinessError reports whether err is a business-rule failure meant
// to be shown to the user as-is, rather than a storage fault.
func IsBusinessError(err error) bool {
	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		return true
	}
	for _, known := range []error{
		ErrDuplicateEmail, ErrInvalidCredentials, ErrEmptyCart, ErrNoPaymentMethod,
		ErrUserNotFound, ErrProductNotFound, ErrOrderNotFound, ErrInvalidTransition,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}
