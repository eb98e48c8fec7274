package domain

// TransactionItemRequest позиция в запросе на создание транзакции
type TransactionItemRequest struct {
	ProductID int64 `json:"produk"`
	Quantity  int64 `json:"jumlah"`
}

// TransactionRequest тело POST /transaksi/. Цены и суммы считает сервер.
type TransactionRequest struct {
	Type          TransactionType          `json:"jenis_transaksi"`
	CustomerID    *int64                   `json:"customer"`
	PaymentStatus PaymentStatus            `json:"status_pembayaran"`
	PaymentMethod PaymentMethod            `json:"metode_pembayaran"`
	Note          string                   `json:"keterangan"`
	Items         []TransactionItemRequest `json:"items"`
}

// Page страница списка в формате count/next/previous/results
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// TokenPair ответ /token/ и /token/refresh/ (refresh может отсутствовать)
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Credentials тело /token/
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest тело /token/refresh/
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// Registration тело /auth/register/
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Profile ответ /auth/profile/
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
