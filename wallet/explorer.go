package wallet

import (
	"fmt"
	"strings"
)

// Explorer builds links to a block explorer web UI.
type Explorer struct {
	// BaseURL is the root of the explorer, e.g. https://blockstream.info.
	BaseURL string
}

// URL returns the explorer root without a trailing slash.
func (e Explorer) URL() string {
	return strings.TrimRight(e.BaseURL, "/")
}

// AddressURL returns the page of an address.
func (e Explorer) AddressURL(addr string) string {
	return fmt.Sprintf("%s/address/%s", e.URL(), addr)
}

// TxURL returns the page of a transaction.
func (e Explorer) TxURL(txid string) string {
	return fmt.Sprintf("%s/tx/%s", e.URL(), txid)
}

// ExplorerURL returns the configured explorer root.
func (c *Client) ExplorerURL() string {
	return c.cfg.Explorer.URL()
}

// ExplorerAddressURL returns the explorer page of addr.
func (c *Client) ExplorerAddressURL(addr string) string {
	return c.cfg.Explorer.AddressURL(addr)
}

// ExplorerTxURL returns the explorer page of txid.
func (c *Client) ExplorerTxURL(txid string) string {
	return c.cfg.Explorer.TxURL(txid)
}
