package errors

import "errors"

// ErrFileNotFound is returned when a file is not found.
var ErrFileNotFound = errors.New("file not found")

// ErrIncorrectInput is returned when the user input is incorrect.
var ErrIncorrectInput = errors.New("incorrect input")

// ErrNodeNotFound is returned when a node name cannot be resolved in a lab.
var ErrNodeNotFound = errors.New("node not found")

// ErrNetworkNotFound is returned when a network name cannot be resolved in a lab.
var ErrNetworkNotFound = errors.New("network not found")

// ErrInterfaceNotFound is returned when an interface name does not exist on a node.
var ErrInterfaceNotFound = errors.New("interface not found")

// ErrNoConsolePort is returned when a node's console port cannot be derived
// from any of the known node detail fields.
var ErrNoConsolePort = errors.New("console port not found")

// ErrSessionBroken is returned when I/O on an established console session
// fails; the session must be closed and is not reusable.
var ErrSessionBroken = errors.New("console session broken")
