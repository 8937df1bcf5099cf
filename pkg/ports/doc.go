/*
Package ports defines the interfaces between the Espalier engine and its
external collaborators: the configuration store that owns rule and scenario
definitions, the session store that owns per-conversation state, and the
optional distributed locker used to serialize turns for the same session.

Adapters (memory, redis, yaml) implement these interfaces; the engine core
depends only on the interfaces.
*/
package ports
