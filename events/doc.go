// Package events provides an in-process publish/subscribe bus for plugin
// lifecycle events. The manager publishes; presentation layers and tests
// subscribe. Delivery is per-subscriber buffered so a slow consumer never
// blocks an activation flow.
package events
