package networks

import (
	"sync"
)

var (
	cachedNetwork Network
	mu            sync.Mutex
)

// CurrentNetwork returns the network selected with SetNetwork, sepolia when
// nothing was selected.
func CurrentNetwork() Network {
	mu.Lock()
	defer mu.Unlock()
	if cachedNetwork == nil {
		cachedNetwork = Sepolia
	}
	return cachedNetwork
}

func SetNetwork(networkStr string) error {
	n, err := GetNetwork(networkStr)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	cachedNetwork = n
	return nil
}
