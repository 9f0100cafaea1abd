package compliance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ComplianceNFT function selectors (first 4 bytes of keccak-256 of the
// canonical signature).
const (
	selIsCompliant = "0xa200e5d0" // isCompliant(address)
	selTokenOf     = "0x42ec38e2" // tokenOf(address)
	selValidUntil  = "0x9604fd85" // validUntil(address)
)

// NFTOracle reads the ComplianceNFT contract over plain JSON-RPC eth_call.
type NFTOracle struct {
	rpcURL     string
	contract   string
	httpClient *http.Client
	log        *zap.Logger
}

func NewNFTOracle(rpcURL, contractAddress string, log *zap.Logger) *NFTOracle {
	return &NFTOracle{
		rpcURL:   rpcURL,
		contract: contractAddress,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

func (o *NFTOracle) Snapshot(ctx context.Context, address string) (*Snapshot, error) {
	tokenID, err := o.call(ctx, selTokenOf, address)
	if err != nil {
		return nil, fmt.Errorf("tokenOf: %w", err)
	}

	compliant, err := o.call(ctx, selIsCompliant, address)
	if err != nil {
		return nil, fmt.Errorf("isCompliant: %w", err)
	}

	validUntil, err := o.call(ctx, selValidUntil, address)
	if err != nil {
		return nil, fmt.Errorf("validUntil: %w", err)
	}

	return &Snapshot{
		TokenID:     tokenID,
		IsCompliant: compliant.Sign() != 0,
		ValidUntil:  validUntil.Int64(),
	}, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// call performs eth_call for a single-address getter and decodes the 32-byte
// word result as an unsigned integer.
func (o *NFTOracle) call(ctx context.Context, selector, address string) (*big.Int, error) {
	data := selector + padAddress(address)

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_call",
		Params: []any{
			map[string]string{"to": o.contract, "data": data},
			"latest",
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rpc unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("rpc returned %d: %s", resp.StatusCode, string(b))
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, err
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	return decodeWord(rpcResp.Result)
}

// padAddress left-pads a 20-byte address to a 32-byte ABI word, hex encoded
// without the 0x prefix.
func padAddress(address string) string {
	hex := strings.ToLower(strings.TrimPrefix(address, "0x"))
	return strings.Repeat("0", 64-len(hex)) + hex
}

func decodeWord(result string) (*big.Int, error) {
	hex := strings.TrimPrefix(result, "0x")
	if hex == "" {
		return big.NewInt(0), nil
	}
	n, ok := new(big.Int).SetString(hex, 16)
	if !ok {
		return nil, fmt.Errorf("bad eth_call result %q", result)
	}
	return n, nil
}
