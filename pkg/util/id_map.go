package util

// IDMap interns strings (street names, tag values) into dense int ids.
// GetID mutates the map, so it must only be called while building a graph.
type IDMap struct {
	StrToID map[string]int
	IDToStr map[int]string
}

func NewIdMap() IDMap {
	return IDMap{
		StrToID: make(map[string]int),
		IDToStr: make(map[int]string),
	}
}

func (m IDMap) GetID(s string) int {
	if id, ok := m.StrToID[s]; ok {
		return id
	}
	id := len(m.StrToID)
	m.StrToID[s] = id
	m.IDToStr[id] = s
	return id
}

func (m IDMap) GetStr(id int) string {
	return m.IDToStr[id]
}

func (m IDMap) Set(id int, s string) {
	m.StrToID[s] = id
	m.IDToStr[id] = s
}

func (m IDMap) Len() int {
	return len(m.IDToStr)
}
