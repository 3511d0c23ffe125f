package domain

// KeyPrefix is the default namespace for every key the service writes.
const KeyPrefix = "gramgyan:"
