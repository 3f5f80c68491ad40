package component

// AnimationTrack is one independently playing animation channel, such as a
// character's body or its face.
type AnimationTrack struct {
	Clip    string
	Start   float64
	End     float64
	Frame   float64
	Speed   float64
	Loop    bool
	Playing bool
}

// Animation holds the named tracks of an entity. Story conditions read
// track frames; story actions start and stop clips on them.
type Animation struct {
	Tracks map[string]*AnimationTrack
}

// Track returns the named track, creating it when create is set.
func (a *Animation) Track(name string, create bool) (*AnimationTrack, bool) {
	if a == nil {
		return nil, false
	}
	if t, ok := a.Tracks[name]; ok && t != nil {
		return t, true
	}
	if !create {
		return nil, false
	}
	if a.Tracks == nil {
		a.Tracks = make(map[string]*AnimationTrack)
	}
	t := &AnimationTrack{Speed: 1}
	a.Tracks[name] = t
	return t, true
}

var AnimationComponent = NewComponent[Animation]()
