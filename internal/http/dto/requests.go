package dto

type SubmitVerificationRequest struct {
	Address string         `json:"address"`
	Kind    string         `json:"kind"`
	Fields  map[string]any `json:"fields"`
}

type SubmitCashRequest struct {
	Address   string  `json:"address"`
	Direction string  `json:"direction"`
	AmountWei string  `json:"amountWei"`
	BankRef   *string `json:"bankRef"`
	Token     string  `json:"token"`
}

// UpdateStatusRequest carries the admin status mutation. AdminAddress
// identifies the caller when the static gate is configured; token-gated
// deployments use the Authorization header instead.
type UpdateStatusRequest struct {
	Status       string `json:"status"`
	AdminAddress string `json:"adminAddress"`
}
