package iobus

import (
	"testing"

	"github.com/emgre/agc/emu/register"
)

type fakeSuperbank struct{ level bool }

func (f *fakeSuperbank) SetSuperbank(level bool) { f.level = level }

func TestWriteChannel7SetsSuperbank(t *testing.T) {
	b := New()
	fake := &fakeSuperbank{}
	b.BindSuperbank(fake)

	b.Write(ChannelFEXT, 1)
	if !fake.level {
		t.Fatal("expected superbank asserted after channel 7 write with bit 0 set")
	}

	b.Write(ChannelFEXT, 0)
	if fake.level {
		t.Fatal("expected superbank cleared after channel 7 write with bit 0 clear")
	}
}

func TestSetInputIsVisibleToRead(t *testing.T) {
	b := New()
	b.SetInput(ChannelKeyboard, 0o15)
	if got := b.Read(ChannelKeyboard); got != 0o15 {
		t.Fatalf("Read(keyboard) = %o, want 015", got)
	}
}

func TestOnWriteHookFires(t *testing.T) {
	b := New()
	var got register.Word
	b.OnWrite(ChannelDSKYRelay, func(v register.Word) { got = v })
	b.Write(ChannelDSKYRelay, 0o37)
	if got != 0o37 {
		t.Fatalf("hook saw %o, want 037", got)
	}
}
