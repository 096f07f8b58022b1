// SAM3X8E bare-metal firmware
// https://github.com/due-baremetal/tamago-sam3x
//
// Copyright (c) The TamaGo-SAM3X Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.
//
// +build tamago,arm staticcheck

// Package clock brings the SAM3X8E up from its reset default (the
// internal 4 MHz RC oscillator) to the 12 MHz crystal driving PLLA at
// 84 MHz, programming flash wait states ahead of the switch so fetches
// from internal flash stay correct at the higher clock.
package clock

import (
	"log"

	"github.com/due-baremetal/tamago-sam3x/bits"
	"github.com/due-baremetal/tamago-sam3x/internal/reg"
	"github.com/due-baremetal/tamago-sam3x/soc/sam3x/regs"
)

// ARM/MCK frequency once Init84MHz succeeds; the fallback frequency when
// it does not.
const (
	CrystalFreq = 12000000
	TargetFreq  = 84000000
	FallbackFreq = 4000000

	pllaMul = 6 // encoded MUL field; actual multiplier is MUL+1 = 7
	pllaDiv = 1

	stepTimeoutIters = 5000000
)

// Init84MHz runs the crystal → PLLA → MCK bring-up sequence described in
// the SAM3X8E reference manual's clock generator chapter. It reports
// whether the switch completed; on failure the caller should continue at
// the reset-default ~4 MHz and pass that frequency to downstream
// drivers.
func Init84MHz() bool {
	// 1. Flash wait states ahead of any clock increase, both banks.
	reg.SetN(regs.EEFC0Base+regs.EEFCFMR, regs.EEFCFMRFWSPos, regs.EEFCFMRFWSMask, 4)
	reg.SetN(regs.EEFC1Base+regs.EEFCFMR, regs.EEFCFMRFWSPos, regs.EEFCFMRFWSMask, 4)
	reg.Dsb()
	reg.Isb()

	// 2. Main crystal oscillator, startup time 0xFF, password key 0x37.
	mor := reg.Read(regs.CKGRMOR)
	bits.SetN(&mor, 8, 0xFF, 0xFF)
	mor |= regs.CKGRMORKEY | regs.CKGRMORMOSCXTEN
	reg.Write(regs.CKGRMOR, mor)

	if !reg.WaitBitSet(regs.PMCSR, regs.PMCSRMOSCXTS, stepTimeoutIters) {
		log.Printf("clock: main crystal oscillator failed to start")
		return false
	}

	// 3. Select the crystal as MAINCK.
	mor = reg.Read(regs.CKGRMOR)
	mor &^= uint32(0xFF << 16)
	mor |= regs.CKGRMORKEY | regs.CKGRMORMOSCSEL
	reg.Write(regs.CKGRMOR, mor)

	if !reg.WaitBitSet(regs.PMCSR, regs.PMCSRMOSCXTS, stepTimeoutIters) {
		log.Printf("clock: failed to select crystal as MAINCK")
		return false
	}

	// 4. PLLA: 12 MHz * 7 / 1 = 84 MHz.
	pllar := uint32(regs.CKGRPLLABit29) | regs.CKGRPLLACOUNT
	bits.SetN(&pllar, regs.CKGRPLLAMULPos, regs.CKGRPLLAMULMask, pllaMul)
	bits.SetN(&pllar, regs.CKGRPLLADIVPos, regs.CKGRPLLADIVMask, pllaDiv)
	reg.Write(regs.CKGRPLLA, pllar)

	if !reg.WaitBitSet(regs.PMCSR, regs.PMCSRLOCKA, stepTimeoutIters) {
		log.Printf("clock: PLLA failed to lock")
		return false
	}

	// 5. MCK prescaler = 1 (no division).
	reg.SetN(regs.PMCMCKR, regs.PMCMCKRPRESPos, regs.PMCMCKRPRESMask, 0)

	if !reg.WaitBitSet(regs.PMCSR, regs.PMCSRMCKRDY, stepTimeoutIters) {
		log.Printf("clock: MCK not ready after prescaler change")
		return false
	}

	// 6. Switch MCK source to PLLA.
	reg.SetN(regs.PMCMCKR, regs.PMCMCKRCSSPos, regs.PMCMCKRCSSMask, regs.PMCMCKRCSSPLLA)

	if !reg.WaitBitSet(regs.PMCSR, regs.PMCSRMCKRDY, stepTimeoutIters) {
		log.Printf("clock: MCK not ready after switching source to PLLA")
		return false
	}

	// 7.
	reg.Dsb()
	reg.Isb()

	return true
}
