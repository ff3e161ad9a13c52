// Package deserializer reads compound-value documents back into producer
// trees built from the [computed] package.
//
// Invocations of named algorithms become [computed.Invocation], invocations
// of function values become [computed.Apply], function definitions become
// [computed.Function] and argument references become [computed.Variable].
// Dictionaries and lists decode to map[string]any and []any; a call to the
// Date algorithm decodes to a UTC [time.Time].
//
// The decoded tree re-encodes to the document it was read from.
package deserializer
