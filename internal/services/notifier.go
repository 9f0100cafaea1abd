package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ecop-onboarding/backend/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Notifier dispatches a human-readable message to the admin channel.
// Implementations are best-effort: failures are logged, never returned, and
// never block request creation.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// TelegramNotifier posts messages to a chat via the Bot API. With missing
// credentials it degrades to a log-only no-op.
type TelegramNotifier struct {
	apiBase    string
	botToken   string
	chatID     string
	httpClient *http.Client
	log        *zap.Logger
}

func NewTelegramNotifier(apiBase, botToken, chatID string, log *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		apiBase:  strings.TrimRight(apiBase, "/"),
		botToken: botToken,
		chatID:   chatID,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

func (n *TelegramNotifier) Notify(ctx context.Context, text string) {
	if n.botToken == "" || n.chatID == "" {
		n.log.Warn("telegram credentials not configured, skipping notification")
		return
	}

	body, _ := json.Marshal(map[string]any{
		"chat_id":    n.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	})

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		n.log.Warn("failed to build telegram request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.log.Warn("failed to send telegram notification", zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.log.Warn("telegram notification failed", zap.Int("status", resp.StatusCode))
	}
}

// TokenDecimals returns the fixed-point scale for a token symbol: 18 for the
// native gas token, 6 for stablecoins.
func TokenDecimals(token string) int {
	if token == "ETH" {
		return 18
	}
	return 6
}

// DisplayAmount converts a fixed-point integer string into a display decimal
// with six fractional digits. Unparseable input passes through unchanged.
func DisplayAmount(amountWei, token string) string {
	d, err := decimal.NewFromString(amountWei)
	if err != nil {
		return amountWei
	}
	return d.Shift(int32(-TokenDecimals(token))).StringFixed(6)
}

func formatVerificationSubmitted(r *models.VerificationRequest) string {
	return fmt.Sprintf(`🔍 *New verification request*

*Type:* %s
*Address:* `+"`%s`"+`
*Request ID:* %s
*Timestamp:* %s

Please review the request in the admin panel.`,
		r.Kind, r.Address, r.ID, time.Now().UTC().Format(time.RFC3339))
}

func formatCashSubmitted(r *models.CashRequest, owner *models.User) string {
	bank := "Not specified"
	if r.BankRef != nil && *r.BankRef != "" {
		bank = *r.BankRef
	}
	return fmt.Sprintf(`💰 *New cash %s request*

*User:* %s
*Wallet:* `+"`%s`"+`
*Amount:* %s %s
*Bank:* %s
*Request ID:* %s
*Timestamp:* %s

Please review the request in the admin panel.`,
		strings.ToLower(r.Direction), owner.DisplayName(), r.Address,
		DisplayAmount(r.AmountWei, r.Token), r.Token, bank, r.ID,
		time.Now().UTC().Format(time.RFC3339))
}

// FormatStatusChanged renders the push sent by the notify bridge when an
// admin resolves a request.
func FormatStatusChanged(requestType, requestID, address, oldStatus, newStatus string) string {
	return fmt.Sprintf(`📋 *%s request %s*

*Wallet:* `+"`%s`"+`
*Request ID:* %s
*Status:* %s → %s`,
		capitalize(requestType), strings.ToLower(newStatus), models.MaskAddress(address),
		requestID, oldStatus, newStatus)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
