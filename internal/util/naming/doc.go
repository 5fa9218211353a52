// Package naming derives appliance object names from semantic attributes.
//
// Every name is a pure function of its inputs: an object-kind prefix followed by
// normalized components joined with Separator. IPv4 addresses always contribute
// exactly four numeric components, ports and VLAN tags are decimal integers, and
// free-form values (usernames) only ever appear as the final component. That
// makes each name reversible, which is what the Parse functions rely on when
// existing objects are discovered by listing rather than from a stored index.
package naming
