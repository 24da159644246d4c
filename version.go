package gosearchgate

// SearchGateVersion is the version of the gateway client.
const SearchGateVersion = "0.1.0"
