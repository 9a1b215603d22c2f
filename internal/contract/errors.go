package contract

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNoProvider is returned when an operation needs the node but no
	// provider has been set on the class.
	ErrNoProvider = errors.New("no provider set, call SetProvider first")

	// ErrNoBinary is returned by New when the active network bundle carries
	// no bytecode.
	ErrNoBinary = errors.New("contract binary not set, can't deploy new instance")

	// ErrNotDeployed is returned by Deployed when the active network bundle
	// has no address.
	ErrNotDeployed = errors.New("cannot find deployed address")

	// ErrMethodNotFound is returned when a function name is not in the ABI.
	ErrMethodNotFound = errors.New("function not found in ABI")

	// ErrNotWriteMethod is returned when Transact is called on a read function.
	ErrNotWriteMethod = errors.New("function is not a write function")

	// ErrNoContractAddress is returned when a creation receipt carries no
	// contract address.
	ErrNoContractAddress = errors.New("receipt has no contract address")

	// ErrUnlinkable is returned when linking against an instance without an
	// address.
	ErrUnlinkable = errors.New("cannot link contract without an address")
)

// UnlinkedLibrariesError lists library placeholders still present in the
// bytecode. Libraries are deduplicated and sorted.
type UnlinkedLibrariesError struct {
	Contract  string
	Libraries []string
}

func (e *UnlinkedLibrariesError) Error() string {
	return fmt.Sprintf(
		"%s contains unresolved libraries. You must deploy and link the following libraries before you can deploy a new version of %s: %s",
		e.Contract, e.Contract, strings.Join(e.Libraries, ", "),
	)
}

// InvalidAddressError is returned by At for a string that is not a
// 0x-prefixed 40 hex digit address.
type InvalidAddressError struct {
	Contract string
	Address  string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address passed to %s.At(): %q", e.Contract, e.Address)
}

// NetworkMismatchError is returned when the artifact has no bundle for the
// node's network id.
type NetworkMismatchError struct {
	Contract  string
	NetworkID string
}

func (e *NetworkMismatchError) Error() string {
	return fmt.Sprintf("%s: no artifacts for network id %q", e.Contract, e.NetworkID)
}

// TimeoutError is returned when a receipt was not observed before the
// confirmation deadline. TxHash can be used to look the transaction up later.
type TimeoutError struct {
	TxHash  string
	Elapsed time.Duration
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transaction %s wasn't processed in %g seconds (waited %.1fs)",
		e.TxHash, e.Timeout.Seconds(), e.Elapsed.Seconds())
}

// TxError is returned when tracking a submitted transaction fails. Err is
// the transport or context error exactly as received.
type TxError struct {
	TxHash string
	State  TxState
	Err    error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("transaction %s %s: %v", e.TxHash, e.State, e.Err)
}

func (e *TxError) Unwrap() error { return e.Err }

// OptionsError is returned when a trailing options value cannot be decoded
// into TxOpts.
type OptionsError struct {
	Err error
}

func (e *OptionsError) Error() string {
	return "invalid transaction options: " + e.Err.Error()
}

func (e *OptionsError) Unwrap() error { return e.Err }
