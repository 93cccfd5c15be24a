// Package redis publishes builder change events over Redis Pub/Sub so that
// other processes can follow an editor session.
package redis
