package effects

type fakeTarget struct {
	text      string
	classes   map[Class]bool
	connected bool
}

func newFake(text string) *fakeTarget {
	return &fakeTarget{text: text, classes: map[Class]bool{}, connected: true}
}

func (f *fakeTarget) Text() string          { return f.text }
func (f *fakeTarget) SetText(s string)      { f.text = s }
func (f *fakeTarget) AddClass(c Class)      { f.classes[c] = true }
func (f *fakeTarget) RemoveClass(c Class)   { delete(f.classes, c) }
func (f *fakeTarget) HasClass(c Class) bool { return f.classes[c] }
func (f *fakeTarget) Connected() bool       { return f.connected }

type fakeSurface struct {
	byID  map[TargetID]*fakeTarget
	lines []*fakeTarget
	links []*fakeTarget
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{byID: map[TargetID]*fakeTarget{}}
}

func (s *fakeSurface) with(id TargetID, text string) *fakeTarget {
	t := newFake(text)
	s.byID[id] = t
	return t
}

func (s *fakeSurface) Target(id TargetID) (Target, bool) {
	t, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return t, true
}

func (s *fakeSurface) Lines() []Target {
	out := make([]Target, len(s.lines))
	for i, l := range s.lines {
		out[i] = l
	}
	return out
}

func (s *fakeSurface) Links() []Target {
	out := make([]Target, len(s.links))
	for i, l := range s.links {
		out[i] = l
	}
	return out
}
