package sam

import "sort"

// DisplayList holds the objects currently on stage while frames are
// decoded. Frames only store the changes against the previous frame.
type DisplayList struct {
	objects map[int]*Object
}

func NewDisplayList() DisplayList {
	return DisplayList{
		objects: make(map[int]*Object),
	}
}

func (dl *DisplayList) Entries() int {
	return len(dl.objects)
}

// Add places a new object, replacing any object with the same id
func (dl *DisplayList) Add(id, resNum int) {
	if dl.objects == nil {
		dl.objects = make(map[int]*Object)
	}
	obj := &Object{
		ID:        id,
		ResNum:    resNum,
		Transform: Identity(),
		Color:     White,
	}
	dl.objects[id] = obj
}

func (dl *DisplayList) Remove(id int) {
	delete(dl.objects, id)
}

func (dl *DisplayList) Get(id int) (*Object, bool) {
	obj, ok := dl.objects[id]
	return obj, ok
}

// Snapshot copies the current objects ordered by object id
func (dl *DisplayList) Snapshot() []Object {
	result := make([]Object, 0, len(dl.objects))
	for _, obj := range dl.objects {
		result = append(result, *obj)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result
}
