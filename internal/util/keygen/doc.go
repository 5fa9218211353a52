// Package keygen generates SSH key pairs.
//
// Private keys come back PEM-encoded and public keys in OpenSSH
// authorized_keys format, the form the ssh_host_key setting and the fake
// appliance's SSH listener use.
package keygen
