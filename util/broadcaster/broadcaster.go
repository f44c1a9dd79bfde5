package broadcaster

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/scprotocol/scctl/common"
)

const TIMEOUT = 4 * time.Second

// RawSender is the one rpc method the broadcaster needs from a node.
type RawSender interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// Broadcaster takes a signed tx and try to broadcast it to all
// nodes that it manages as fast as possible. The tx counts as broadcasted
// when at least 1 node accepted it.
type Broadcaster struct {
	clients map[string]RawSender
}

func (b *Broadcaster) NodeNames() []string {
	res := []string{}
	for name := range b.clients {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

func (b *Broadcaster) broadcast(ctx context.Context, name string, client RawSender, data string) error {
	if err := client.CallContext(ctx, nil, "eth_sendRawTransaction", data); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (b *Broadcaster) BroadcastTx(ctx context.Context, tx *types.Transaction) (bool, error) {
	data, err := tx.MarshalBinary()
	if err != nil {
		return false, fmt.Errorf("tx is not valid, couldn't encode it: %w", err)
	}
	return b.Broadcast(ctx, hexutil.Encode(data))
}

// Broadcast sends data, the hex encoded signed tx, to every node.
func (b *Broadcaster) Broadcast(ctx context.Context, data string) (bool, error) {
	if len(b.clients) == 0 {
		return false, fmt.Errorf("no nodes to broadcast to")
	}
	timeout, cancel := context.WithTimeout(ctx, TIMEOUT)
	defer cancel()
	parallelTasks := []func() error{}
	for name := range b.clients {
		name, cli := name, b.clients[name]
		parallelTasks = append(parallelTasks, func() error {
			return b.broadcast(timeout, name, cli, data)
		})
	}
	err, numErrs := common.RunParallel(parallelTasks...)
	if numErrs == len(b.clients) {
		return false, err
	}
	return true, nil
}

func NewBroadcasterWithClients(clients map[string]RawSender) *Broadcaster {
	return &Broadcaster{clients: clients}
}

// NewGenericBroadcaster dials every node. Nodes that can't be dialed are
// skipped, the error lists them.
func NewGenericBroadcaster(nodes map[string]string) (*Broadcaster, error) {
	clients := map[string]RawSender{}
	failures := []string{}
	for name, url := range nodes {
		client, err := rpc.Dial(url)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s (%s)", name, err))
			continue
		}
		clients[name] = client
	}
	b := &Broadcaster{clients: clients}
	if len(failures) > 0 {
		return b, fmt.Errorf("couldn't connect to: %v", failures)
	}
	return b, nil
}
