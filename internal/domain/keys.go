package domain

// KeyPrefix namespaces all catalog keys in the store.
const KeyPrefix = "eerie:"
