package entity

import "iter"

const arenaBlockSize = 64

// arena stores values in fixed-size blocks. Slots are stable until removed
// and freed slots are reused.
type arena[T any] struct {
	blocks    [][arenaBlockSize]T
	filled    [][arenaBlockSize]bool
	freeSlots []int
	nextIndex int
	count     int
}

// insert stores item and returns its slot.
func (a *arena[T]) insert(item T) int {
	var index int
	if n := len(a.freeSlots); n > 0 {
		index = a.freeSlots[n-1]
		a.freeSlots = a.freeSlots[:n-1]
	} else {
		index = a.nextIndex
		a.nextIndex++
		if index/arenaBlockSize >= len(a.blocks) {
			a.blocks = append(a.blocks, [arenaBlockSize]T{})
			a.filled = append(a.filled, [arenaBlockSize]bool{})
		}
	}

	blockIdx, slotIdx := index/arenaBlockSize, index%arenaBlockSize
	a.blocks[blockIdx][slotIdx] = item
	a.filled[blockIdx][slotIdx] = true
	a.count++
	return index
}

func (a *arena[T]) get(index int) (T, bool) {
	var zero T
	if !a.has(index) {
		return zero, false
	}
	return a.blocks[index/arenaBlockSize][index%arenaBlockSize], true
}

func (a *arena[T]) has(index int) bool {
	if index < 0 || index >= a.nextIndex {
		return false
	}
	return a.filled[index/arenaBlockSize][index%arenaBlockSize]
}

// remove empties a slot and zeroes its value.
func (a *arena[T]) remove(index int) {
	if !a.has(index) {
		return
	}
	blockIdx, slotIdx := index/arenaBlockSize, index%arenaBlockSize
	var zero T
	a.blocks[blockIdx][slotIdx] = zero
	a.filled[blockIdx][slotIdx] = false
	a.freeSlots = append(a.freeSlots, index)
	a.count--
}

func (a *arena[T]) len() int {
	return a.count
}

// iter yields filled slots in slot order.
func (a *arena[T]) iter() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < a.nextIndex; i++ {
			blockIdx, slotIdx := i/arenaBlockSize, i%arenaBlockSize
			if !a.filled[blockIdx][slotIdx] {
				continue
			}
			if !yield(i, a.blocks[blockIdx][slotIdx]) {
				return
			}
		}
	}
}

// compact moves every value to the front and returns old slot -> new slot.
func (a *arena[T]) compact() map[int]int {
	moved := make(map[int]int, a.count)
	if a.count == 0 {
		a.reset()
		return moved
	}

	numBlocks := (a.count + arenaBlockSize - 1) / arenaBlockSize
	blocks := make([][arenaBlockSize]T, numBlocks)
	filled := make([][arenaBlockSize]bool, numBlocks)

	write := 0
	for read, v := range a.iter() {
		blocks[write/arenaBlockSize][write%arenaBlockSize] = v
		filled[write/arenaBlockSize][write%arenaBlockSize] = true
		moved[read] = write
		write++
	}

	a.blocks = blocks
	a.filled = filled
	a.freeSlots = nil
	a.nextIndex = write
	return moved
}

func (a *arena[T]) reset() {
	a.blocks = nil
	a.filled = nil
	a.freeSlots = nil
	a.nextIndex = 0
	a.count = 0
}
