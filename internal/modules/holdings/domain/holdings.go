package domain

import "sort"

// Holding is the lot queue for one item. TotalCount always equals the sum
// of lot counts.
type Holding struct {
	TotalCount int64
	lots       lotQueue
}

// Consumption reports what a FIFO drain removed.
type Consumption struct {
	Count    int64
	ByBucket map[string]int64
}

// Total is the booked value removed across buckets.
func (c Consumption) Total() int64 {
	var total int64
	for _, v := range c.ByBucket {
		total += v
	}
	return total
}

// Holdings tracks acquisition lots per item ID.
type Holdings struct {
	items map[int64]*Holding
}

func New() *Holdings {
	return &Holdings{items: map[int64]*Holding{}}
}

// AddLot appends a lot at the tail of the item's queue. Non-positive counts
// are ignored.
func (h *Holdings) AddLot(item, count, valuePerUnit int64, bucket string) {
	if count <= 0 {
		return
	}
	holding, ok := h.items[item]
	if !ok {
		holding = &Holding{}
		h.items[item] = holding
	}
	holding.lots.PushBack(Lot{Count: count, ValuePerUnit: valuePerUnit, Bucket: bucket})
	holding.TotalCount += count
}

// ConsumeFIFO drains up to count units from the head of the queue and
// returns the booked value removed per bucket. Items without holdings yield
// an empty map.
func (h *Holdings) ConsumeFIFO(item, count int64) map[string]int64 {
	return h.Consume(item, count).ByBucket
}

func (h *Holdings) Consume(item, count int64) Consumption {
	out := Consumption{ByBucket: map[string]int64{}}
	holding, ok := h.items[item]
	if !ok || count <= 0 {
		return out
	}
	remaining := count
	for remaining > 0 && holding.lots.Len() > 0 {
		lot := holding.lots.Front()
		take := lot.Count
		if take > remaining {
			take = remaining
		}
		out.ByBucket[lot.Bucket] += take * lot.ValuePerUnit
		out.Count += take
		remaining -= take
		if take == lot.Count {
			holding.lots.PopFront()
		} else {
			lot.Count -= take
		}
	}
	holding.TotalCount -= out.Count
	if holding.lots.Len() == 0 {
		delete(h.items, item)
	}
	return out
}

func (h *Holdings) Count(item int64) int64 {
	if holding, ok := h.items[item]; ok {
		return holding.TotalCount
	}
	return 0
}

func (h *Holdings) ExpectedValue(item int64) int64 {
	holding, ok := h.items[item]
	if !ok {
		return 0
	}
	var total int64
	for i := 0; i < holding.lots.Len(); i++ {
		total += holding.lots.At(i).Value()
	}
	return total
}

func (h *Holdings) TotalExpectedValue() int64 {
	var total int64
	for item := range h.items {
		total += h.ExpectedValue(item)
	}
	return total
}

func (h *Holdings) ValueByBucket() map[string]int64 {
	out := map[string]int64{}
	for _, holding := range h.items {
		for i := 0; i < holding.lots.Len(); i++ {
			lot := holding.lots.At(i)
			out[lot.Bucket] += lot.Value()
		}
	}
	return out
}

// Lots returns a copy of the item's queue in FIFO order.
func (h *Holdings) Lots(item int64) []Lot {
	holding, ok := h.items[item]
	if !ok {
		return nil
	}
	out := make([]Lot, 0, holding.lots.Len())
	for i := 0; i < holding.lots.Len(); i++ {
		out = append(out, holding.lots.At(i))
	}
	return out
}

// Items lists held item IDs in ascending order.
func (h *Holdings) Items() []int64 {
	out := make([]int64, 0, len(h.items))
	for item := range h.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (h *Holdings) Clone() *Holdings {
	out := New()
	out.Absorb(h)
	return out
}

// Absorb appends other's lots behind h's existing lots, item by item.
func (h *Holdings) Absorb(other *Holdings) {
	for _, item := range other.Items() {
		for _, lot := range other.Lots(item) {
			h.AddLot(item, lot.Count, lot.ValuePerUnit, lot.Bucket)
		}
	}
}
