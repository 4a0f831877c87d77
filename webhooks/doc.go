// Package webhooks authenticates inbound webhook deliveries. Payloads are
// signed with HMAC-SHA256 over "<timestamp>.<body>" and carried in a
// "t=<unixSeconds>,v1=<hex>" header; the verifier checks freshness and the
// digest in constant time, and the processor deduplicates replayed
// deliveries through a ledger.
package webhooks
