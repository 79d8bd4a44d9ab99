// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func assembleAt(code string, origin uint16) (*Assembly, error) {
	r := strings.NewReader(code)
	assembly, _, err := Assemble(r, "test", origin, io.Discard, 0)
	return assembly, err
}

func checkASMAt(t *testing.T, asm string, origin uint16, expected string) *Assembly {
	t.Helper()
	assembly, err := assembleAt(asm, origin)
	if err != nil {
		t.Error(err)
		return nil
	}

	b := make([]byte, len(assembly.Code)*2)
	for i, j := 0, 0; i < len(assembly.Code); i, j = i+1, j+2 {
		v := assembly.Code[i]
		b[j+0] = hex[v>>4]
		b[j+1] = hex[v&0x0f]
	}
	s := string(b)

	if s != expected {
		t.Error("code doesn't match expected")
		t.Errorf("got: %s\n", s)
		t.Errorf("exp: %s\n", expected)
	}
	return assembly
}

func checkASM(t *testing.T, asm string, expected string) *Assembly {
	t.Helper()
	return checkASMAt(t, asm, 0, expected)
}

func checkASMError(t *testing.T, asm string, kind error) *Error {
	t.Helper()
	_, err := assembleAt(asm, 0)
	if err == nil {
		t.Errorf("Expected error on %q, didn't get one\n", asm)
		return nil
	}
	if errors.Cause(err) != kind {
		t.Errorf("Expected '%v', got '%v'\n", kind, err)
	}
	e, ok := err.(*Error)
	if !ok {
		t.Errorf("Expected *Error, got %T\n", err)
	}
	return e
}

func checkLabel(t *testing.T, a *Assembly, name string, addr uint16) {
	t.Helper()
	if a == nil {
		return
	}
	l, ok := a.Program.Label(name)
	switch {
	case !ok:
		t.Errorf("label %s not found", name)
	case l.Address != addr:
		t.Errorf("label %s: got $%04X, exp $%04X", name, l.Address, addr)
	}
}

func TestHexListing(t *testing.T) {
	asm := `
START: LDA #$01
       STA $00
       JMP START`

	a := checkASM(t, asm, "A90185004C0000")
	checkLabel(t, a, "START", 0)

	out, err := a.Render(FormatHex)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(out)); got != "A9 01 85 00 4C 00 00" {
		t.Errorf("got %q", got)
	}
}

func TestBranchBackward(t *testing.T) {
	asm := `
LOOP: DEX
      BNE LOOP`

	a := checkASMAt(t, asm, 0x0600, "CAD0FD")
	checkLabel(t, a, "LOOP", 0x0600)
}

func TestBranchForward(t *testing.T) {
	asm := `
	LDX #$05
LOOP:	DEX
	BEQ DONE
	JMP LOOP
DONE:	RTS`

	a := checkASM(t, asm, "A205CAF0034C020060")
	checkLabel(t, a, "LOOP", 2)
	checkLabel(t, a, "DONE", 8)
}

func TestRelDisplacement(t *testing.T) {
	// The displacement byte sits at 'origin'; the branch lands on
	// origin+1+d.
	for _, origin := range []uint16{0x0002, 0x0180, 0x0602, 0x7ffe, 0xc010} {
		for d := -128; d <= 127; d++ {
			if d == -1 {
				continue
			}
			target := uint16(int(origin) + 1 + d)
			if got := relDisplacement(target, origin); got != byte(int8(d)) {
				t.Errorf("origin $%04X target $%04X: got %02X exp %02X", origin, target, got, byte(int8(d)))
			}
		}
		if got := relDisplacement(origin, origin); got != 0 {
			t.Errorf("origin $%04X: branch to itself got %02X", origin, got)
		}
	}
}

func TestJumpAddressSplit(t *testing.T) {
	asm := `
	* = $0600
START:	NOP
	JSR SUB
	JMP START
SUB:	RTS`

	// Label addresses are split as addr%255, addr/255.
	a := checkASM(t, asm, "EA200D064C060660")
	checkLabel(t, a, "START", 0x0600)
	checkLabel(t, a, "SUB", 0x0607)
}

func TestJumpIndirectLabel(t *testing.T) {
	asm := `
	JMP (VEC)
VEC:	BRK`

	checkASM(t, asm, "6C030000")
}

func TestOriginMovesLabels(t *testing.T) {
	asm := `
	NOP
	NOP
	* = $0600
START:	LDA #$00`

	a := checkASM(t, asm, "EAEAA900")
	checkLabel(t, a, "START", 0x0600)

	asm = `
PENDING:
	ORG $C000
	NOP
AFTER	NOP`

	a = checkASM(t, asm, "EAEA")
	checkLabel(t, a, "PENDING", 0xc000)
	checkLabel(t, a, "AFTER", 0xc001)
}

func TestBranchCounterIgnoresOrigin(t *testing.T) {
	// Branch displacements are measured from the byte's offset in the
	// emitted stream, whatever the origin.
	asm := `
	* = $0610
LOOP:	DEX
	BNE LOOP`

	checkASM(t, asm, "CAD00D")
	checkASMAt(t, "LOOP: DEX\n\tBNE LOOP", 0x0610, "CAD00D")

	asm = `
	NOP
	NOP
	* = $0600
LOOP:	DEX
	BNE LOOP`

	checkASM(t, asm, "EAEACAD0FB")
}

func TestLabelOnOriginLine(t *testing.T) {
	asm := `
START	* = $0600
	NOP
	JMP START`

	a := checkASM(t, asm, "EA4C0606")
	checkLabel(t, a, "START", 0x0600)
	if a != nil {
		if l, _ := a.Program.Label("START"); l.Row != 2 {
			t.Errorf("START declared on row %d", l.Row)
		}
	}

	a = checkASM(t, "BEGIN: *=$C000\n\tNOP", "EA")
	checkLabel(t, a, "BEGIN", 0xc000)

	checkASMError(t, "A B * = $10", ErrMalformedLiteral)
	checkASMError(t, "START * = $10\nSTART NOP", ErrDuplicateSymbol)
}

func TestStandaloneLabels(t *testing.T) {
	asm := `
FIRST:
SECOND:
	NOP   ; both bind here
	NOP
THIRD:`

	a := checkASMAt(t, asm, 0x1000, "EAEA")
	checkLabel(t, a, "FIRST", 0x1000)
	checkLabel(t, a, "SECOND", 0x1000)
	checkLabel(t, a, "THIRD", 0x1002)
}

func TestCaseInsensitive(t *testing.T) {
	asm := `
loop:	lda #$0a
	sta $d020,x
	bne loop`

	checkASM(t, asm, "A90A9D20D0D0F9")
}

func TestAddressingIMM(t *testing.T) {
	asm := `
	LDA #$20
	LDX #$20
	LDY #$20
	ADC #$20
	SBC #$20
	CMP #$20
	CPX #$20
	CPY #$20
	AND #$20
	ORA #$20
	EOR #$20`

	checkASM(t, asm, "A920A220A0206920E920C920E020C020292009204920")
}

func TestAddressingABS(t *testing.T) {
	asm := `
	LDA $2000
	LDX $2000
	LDY $2000
	STA $2000
	STX $2000
	STY $2000
	ADC $2000
	SBC $2000
	CMP $2000
	CPX $2000
	CPY $2000
	BIT $2000
	AND $2000
	ORA $2000
	EOR $2000
	INC $2000
	DEC $2000
	JMP $2000
	JSR $2000
	ASL $2000
	LSR $2000
	ROL $2000
	ROR $2000`

	checkASM(t, asm, "AD0020AE0020AC00208D00208E00208C00206D0020ED0020CD0020"+
		"EC0020CC00202C00202D00200D00204D0020EE0020CE00204C00202000200E0020"+
		"4E00202E00206E0020")
}

func TestAddressingABX(t *testing.T) {
	asm := `
	LDA $2000,X
	LDY $2000,X
	STA $2000,X
	ADC $2000,X
	SBC $2000,X
	CMP $2000,X
	AND $2000,X
	ORA $2000,X
	EOR $2000,X
	INC $2000,X
	DEC $2000,X
	ASL $2000,X
	LSR $2000,X
	ROL $2000,X
	ROR $2000,X`

	checkASM(t, asm, "BD0020BC00209D00207D0020FD0020DD00203D00201D00205D0020"+
		"FE0020DE00201E00205E00203E00207E0020")
}

func TestAddressingABY(t *testing.T) {
	asm := `
	LDA $2000,Y
	LDX $2000,Y
	STA $2000,Y
	ADC $2000,Y
	SBC $2000,Y
	CMP $2000,Y
	AND $2000,Y
	ORA $2000,Y
	EOR $2000,Y`

	checkASM(t, asm, "B90020BE0020990020790020F90020D90020390020190020590020")
}

func TestAddressingZPG(t *testing.T) {
	asm := `
	LDA $20
	LDX $20
	LDY $20
	STA $20
	STX $20
	STY $20
	ADC $20
	SBC $20
	CMP $20
	CPX $20
	CPY $20
	BIT $20
	AND $20
	ORA $20
	EOR $20
	INC $20
	DEC $20
	ASL $20
	LSR $20
	ROL $20
	ROR $20`

	checkASM(t, asm, "A520A620A4208520862084206520E520C520E420C42024202520"+
		"05204520E620C6200620462026206620")
}

func TestAddressingZPXY(t *testing.T) {
	asm := `
	LDA $20,X
	STY $20,X
	LDX $20,Y
	STX $20,Y`

	checkASM(t, asm, "B5209420B6209620")

	// One-byte indexed operands never fall back to absolute indexing.
	checkASMError(t, "LDA $20,Y", ErrUnknownAddressingPattern)
	checkASMError(t, "STA $20,Y", ErrUnknownAddressingPattern)
	checkASMError(t, "LDX $20,X", ErrUnknownAddressingPattern)
}

func TestAddressingIND(t *testing.T) {
	asm := `
	JMP ($20)
	JMP ($2000)`

	checkASM(t, asm, "6C20006C0020")
}

func TestAddressingIDXIDY(t *testing.T) {
	asm := `
	LDA ($20,X)
	LDA ($20),Y
	STA ($40),Y
	CMP ($FF,X)`

	checkASM(t, asm, "A120B1209140C1FF")
}

func TestAddressingACCIMP(t *testing.T) {
	asm := `
	ASL A
	LSR
	ROL A
	ROR
	CLC
	RTS`

	checkASM(t, asm, "0A4A2A6A1860")
}

func TestAbsolutePadding(t *testing.T) {
	asm := `
	JMP $10
	JSR 32`

	checkASM(t, asm, "4C1000202000")
}

func TestBranchLiteral(t *testing.T) {
	// A literal branch operand is emitted as the displacement itself.
	checkASM(t, "BNE $FB", "D0FB")
}

func TestDefines(t *testing.T) {
	asm := `
PTR = $1234
ZP  = $10
ALIAS = ZP
	LDA #<PTR
	LDX #>PTR
	STA ZP
	STA PTR
	LDA ZP,X
	LDA PTR,X
	STA ALIAS`

	a := checkASM(t, asm, "A934A21285108D3412B510BD34128510")
	if a == nil {
		return
	}
	if len(a.Program.Defines) != 3 {
		t.Fatalf("got %d defines", len(a.Program.Defines))
	}
	d := a.Program.Defines[0]
	if d.Name != "PTR" || d.Width != WidthWord || d.Value.Word() != 0x1234 {
		t.Errorf("unexpected define %+v", d)
	}
}

func TestLiteralForms(t *testing.T) {
	asm := `
	LDA #$2A
	LDA #%00101010
	LDA #42
	LDA #0052
	LDA $2A2A
	LDA %0010101000101010
	LDA 0025052`

	checkASM(t, asm, "A92AA92AA92AA92AAD2A2AAD2A2AAD2A2A")
}

func TestDecimalWordQuirk(t *testing.T) {
	// Decimal literals above 255 split into value/16 and value%16.
	checkASM(t, "LDA 300", "AD0C12")
}

func TestErrors(t *testing.T) {
	checkASMError(t, "FOO #$01", ErrUnknownOpcode)
	checkASMError(t, "LOOP: FOO", ErrUnknownOpcode)
	checkASMError(t, "LDA ($20", ErrUnknownAddressingPattern)
	checkASMError(t, "STA #$01", ErrUnknownAddressingPattern)
	checkASMError(t, "LDA #$1234", ErrUnknownAddressingPattern)
	checkASMError(t, "LDA ($1234),Y", ErrUnknownAddressingPattern)
	checkASMError(t, "INC $20,Y", ErrUnknownAddressingPattern)
	checkASMError(t, "BNE $1234", ErrUnknownAddressingPattern)
	checkASMError(t, "NOP $20", ErrUnknownAddressingPattern)
	checkASMError(t, "LDA $20 $30", ErrUnknownAddressingPattern)
	checkASMError(t, "LDA A", ErrUnknownAddressingPattern)
	checkASMError(t, "LDA $123", ErrAmbiguousOperandWidth)
	checkASMError(t, "LDA #$GG", ErrMalformedLiteral)
	checkASMError(t, "LDA UNDEFINED", ErrMalformedLiteral)
	checkASMError(t, "LDA #<UNDEFINED", ErrMalformedLiteral)
	checkASMError(t, "X = $ZZ", ErrMalformedLiteral)
	checkASMError(t, "* = FOO", ErrMalformedLiteral)
	checkASMError(t, "A1: NOP\nA1: NOP", ErrDuplicateSymbol)
	checkASMError(t, "V = 1\nV: NOP", ErrDuplicateSymbol)
	checkASMError(t, "V = 1\nV = 2", ErrDuplicateSymbol)
}

func TestErrorPosition(t *testing.T) {
	e := checkASMError(t, "\tNOP\n  FOO #$01", ErrUnknownOpcode)
	if e == nil {
		return
	}
	if e.Row != 2 || e.Column != 3 {
		t.Errorf("got row %d col %d", e.Row, e.Column)
	}
	if !errors.Is(e, ErrUnknownOpcode) {
		t.Errorf("errors.Is failed for %v", e)
	}
	exp := "test:2:3: unknown opcode: 'FOO'"
	if e.Error() != exp {
		t.Errorf("got %q, exp %q", e.Error(), exp)
	}
}

func TestLiteralErrorMessage(t *testing.T) {
	e := checkASMError(t, "LDA #$GG", ErrMalformedLiteral)
	if e == nil {
		return
	}
	exp := "test:1:6: malformed literal: '$GG'"
	if e.Error() != exp {
		t.Errorf("got %q, exp %q", e.Error(), exp)
	}
}

func TestUnreadableInput(t *testing.T) {
	_, _, err := AssembleFile("testdata/does-not-exist.asm", 0, io.Discard, 0)
	if errors.Cause(err) != ErrUnreadableInput {
		t.Errorf("got %v", err)
	}
}

func TestDebugListing(t *testing.T) {
	asm := `
VAL = $0010
START: LDA #<VAL   ; load
       BNE START`

	a := checkASM(t, asm, "A910D0FC")
	if a == nil {
		return
	}
	out, err := a.Render(FormatDebug)
	if err != nil {
		t.Fatal(err)
	}

	exp := "     VAL    =   $0010\n" +
		"0000 START  LDA #<VAL        A9 10 \n" +
		"0002        BNE START        D0 FC \n"
	if string(out) != exp {
		t.Errorf("got:\n%s\nexp:\n%s", out, exp)
	}
}

func TestOriginMarkerListing(t *testing.T) {
	a := checkASM(t, "* = $0600\n\tNOP", "EA")
	if a == nil {
		return
	}
	out, err := a.Render(FormatHex)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "* = EA " {
		t.Errorf("got %q", out)
	}
}

func TestBinaryImage(t *testing.T) {
	a := checkASM(t, "* = $0600\nSTART: LDA #$01\n\tJMP START", "A9014C0606")
	if a == nil {
		return
	}

	out, err := a.Render(FormatBinary)
	if err != nil {
		t.Fatal(err)
	}
	exp := append([]byte("6502ROM..."), 0xa9, 0x01, 0x4c, 0x06, 0x06)
	if !bytes.Equal(out, exp) {
		t.Errorf("got % X", out)
	}

	var buf bytes.Buffer
	if _, err := a.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), exp) {
		t.Errorf("WriteTo got % X", buf.Bytes())
	}
}

func TestVerboseOutput(t *testing.T) {
	var buf bytes.Buffer
	_, _, err := Assemble(strings.NewReader("START: NOP\n\tJMP START"), "test", 0, &buf, Verbose)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"-- Collecting symbols --", "-- Encoding instructions --", "label=START", "START"} {
		if !strings.Contains(buf.String(), s) {
			t.Errorf("verbose output missing %q", s)
		}
	}
}
