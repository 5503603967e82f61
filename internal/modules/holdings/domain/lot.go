package domain

// Lot is the valuation snapshot taken when items were acquired. Only Count
// is ever reduced afterwards.
type Lot struct {
	Count        int64
	ValuePerUnit int64
	Bucket       string
}

func (l Lot) Value() int64 {
	return l.Count * l.ValuePerUnit
}

// lotQueue is a ring-buffer deque with O(1) push-back and pop-front.
type lotQueue struct {
	buf  []Lot
	head int
	size int
}

func (q *lotQueue) Len() int {
	return q.size
}

func (q *lotQueue) PushBack(l Lot) {
	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.size)%len(q.buf)] = l
	q.size++
}

func (q *lotQueue) Front() *Lot {
	if q.size == 0 {
		return nil
	}
	return &q.buf[q.head]
}

func (q *lotQueue) PopFront() {
	if q.size == 0 {
		return
	}
	q.buf[q.head] = Lot{}
	q.head = (q.head + 1) % len(q.buf)
	q.size--
}

func (q *lotQueue) At(i int) Lot {
	return q.buf[(q.head+i)%len(q.buf)]
}

func (q *lotQueue) grow() {
	capacity := len(q.buf) * 2
	if capacity == 0 {
		capacity = 4
	}
	next := make([]Lot, capacity)
	for i := 0; i < q.size; i++ {
		next[i] = q.At(i)
	}
	q.buf = next
	q.head = 0
}
