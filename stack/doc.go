/*
Package stack provides a lock-free, unbounded LIFO stack whose nodes are
recycled instead of freed.

Layout:

	type Stack[T any] struct {
		top   stamp.Slot // live chain, payload present
		trash stamp.Slot // free chain, payload zeroed
		nodes arena[T]   // every node ever allocated, by index
	}

A node is always in exactly one place: on the top chain, on the trash chain,
or held by the goroutine that just unlinked it.

slot:  a stamp.Slot, (index, stamp) packed in one word.
link:  slot.next = top, then cas(top, slot), retry on failure.
unlink: read top, read top.next speculatively, cas(top, top.next), retry on
failure. An empty chain returns nil without retrying.

Push takes a node from trash (or the arena when trash is empty), stores the
value, then links it on top. Pop unlinks from top, takes the value, zeroes the
node and links it on trash.

The speculative read of top.next may see a node that was popped, recycled and
pushed again in the meantime. Every successful cas bumps the slot's stamp, so
a cas built from such a stale read always fails and the loop rereads.
Arena memory is only dropped by Close, so a stale read is still a read of a
live node.

Empty, Len and Stats are snapshots. Under concurrent Push/Pop they may be stale
by the time the caller looks at them.

Locked is a mutex-guarded stack with the same method set, used as a baseline.
*/
package stack
