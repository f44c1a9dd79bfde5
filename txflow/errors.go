package txflow

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/scprotocol/scctl/contracts"
)

var (
	ErrBusy             = errors.New("a transaction of this action is already in progress")
	ErrUnsupportedAsset = errors.New("unsupported asset")
	ErrNotConnected     = errors.New("no wallet connected")
)

// MaxMessageLength is the longest error message kept in a State, in runes.
const MaxMessageLength = 240

// revertData digs the revert payload out of a node error.
func revertData(err error) ([]byte, bool) {
	var de rpc.DataError
	if !errors.As(err, &de) {
		return nil, false
	}
	switch data := de.ErrorData().(type) {
	case string:
		b, decodeErr := hexutil.Decode(data)
		if decodeErr != nil {
			return nil, false
		}
		return b, true
	case []byte:
		return data, true
	}
	return nil, false
}

// decodeCustomError matches data against the errors declared in the
// protocol ABIs.
func decodeCustomError(data []byte) (string, bool) {
	if len(data) < 4 {
		return "", false
	}
	for _, a := range []*abi.ABI{contracts.EngineABI(), contracts.ERC20ABI()} {
		for _, e := range a.Errors {
			if !bytes.Equal(e.ID[:4], data[:4]) {
				continue
			}
			args, err := e.Inputs.Unpack(data[4:])
			if err != nil {
				return e.Name, true
			}
			parts := make([]string, len(args))
			for i, arg := range args {
				parts[i] = fmt.Sprint(arg)
			}
			return fmt.Sprintf("%s(%s)", e.Name, strings.Join(parts, ", ")), true
		}
	}
	return "", false
}

// ErrorMessage turns a wallet or node error into the text shown to the
// user: revert reasons and custom errors are decoded, control characters
// escaped and the result truncated.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if data, ok := revertData(err); ok {
		if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
			msg = "execution reverted: " + reason
		} else if custom, found := decodeCustomError(data); found {
			msg = "execution reverted: " + custom
		}
	}
	return truncate(sanitize(msg), MaxMessageLength)
}

func sanitize(s string) string {
	if !strings.ContainsFunc(s, unicode.IsControl) && utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			q := strconv.QuoteRune(r)
			b.WriteString(q[1 : len(q)-1])
			continue
		}
		// invalid bytes come out as utf8.RuneError
		b.WriteRune(r)
	}
	return b.String()
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
