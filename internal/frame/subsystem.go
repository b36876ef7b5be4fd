package frame

import (
	"ippvm/internal/errors"
	"ippvm/internal/value"
)

// Subsystem owns the one global frame, the stack of pushed local frames,
// and the at-most-one temporary frame, and resolves (Kind, name) references
// across them. Grounded on interpret.py's module-level
// global_frame/local_frame_stack/temporary_frame triple plus its
// get_value_from_frames/set_value_in_frames helpers.
type Subsystem struct {
	global *Frame
	locals []*Frame
	temp   *Frame
}

func NewSubsystem() *Subsystem {
	return &Subsystem{global: New(Global)}
}

// CreateFrame replaces any existing temporary frame with a fresh, empty one.
func (s *Subsystem) CreateFrame() {
	s.temp = New(Temporary)
}

// PushFrame promotes the temporary frame to the top of the local frame
// stack. Absent temporary frame is FRAME_DONT_EXIST.
func (s *Subsystem) PushFrame() error {
	if s.temp == nil {
		return errors.New(errors.FrameDontExist, "no temporary frame to push")
	}
	pushed := s.temp
	pushed.kind = Local
	s.locals = append(s.locals, pushed)
	s.temp = nil
	return nil
}

// PopFrame pops the top local frame back into the temporary frame slot,
// replacing whatever was there. Empty local stack is FRAME_DONT_EXIST.
func (s *Subsystem) PopFrame() error {
	if len(s.locals) == 0 {
		return errors.New(errors.FrameDontExist, "no local frame to pop")
	}
	top := s.locals[len(s.locals)-1]
	s.locals = s.locals[:len(s.locals)-1]
	top.kind = Temporary
	s.temp = top
	return nil
}

func (s *Subsystem) resolve(kind Kind) (*Frame, error) {
	switch kind {
	case Global:
		return s.global, nil
	case Local:
		if len(s.locals) == 0 {
			return nil, errors.New(errors.FrameDontExist, "no local frame is active")
		}
		return s.locals[len(s.locals)-1], nil
	case Temporary:
		if s.temp == nil {
			return nil, errors.New(errors.FrameDontExist, "no temporary frame is active")
		}
		return s.temp, nil
	default:
		return nil, errors.New(errors.Intern, "invalid frame kind %d", kind)
	}
}

func (s *Subsystem) Create(kind Kind, name string) error {
	f, err := s.resolve(kind)
	if err != nil {
		return err
	}
	return f.Create(name)
}

func (s *Subsystem) Set(kind Kind, name string, v value.Value) error {
	f, err := s.resolve(kind)
	if err != nil {
		return err
	}
	return f.Set(name, v)
}

func (s *Subsystem) Get(kind Kind, name string) (Slot, error) {
	f, err := s.resolve(kind)
	if err != nil {
		return Slot{}, err
	}
	return f.Get(name)
}

// InitializedCount sums initialized slots across every live frame: global,
// every pushed local frame, and the temporary frame if one exists.
func (s *Subsystem) InitializedCount() int {
	n := s.global.InitializedCount()
	for _, f := range s.locals {
		n += f.InitializedCount()
	}
	if s.temp != nil {
		n += s.temp.InitializedCount()
	}
	return n
}

// Global, Locals and Temp expose read-only views for BREAK diagnostics.
func (s *Subsystem) Global() *Frame    { return s.global }
func (s *Subsystem) Locals() []*Frame  { return s.locals }
func (s *Subsystem) Temp() *Frame      { return s.temp }
