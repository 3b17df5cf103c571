// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build linux

package drm

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl request encoding, <asm-generic/ioctl.h>.
const (
	iocWrite = 1
	iocRead  = 2

	iocNRShift   = 0
	iocTypeShift = 8
	iocSizeShift = 16
	iocDirShift  = 30

	drmIoctlBase = 'd'
)

func iowr(nr, size uintptr) uintptr {
	return (iocRead|iocWrite)<<iocDirShift | size<<iocSizeShift | drmIoctlBase<<iocTypeShift | nr<<iocNRShift
}

type drmVersion struct {
	major, minor, patch int32
	_                   int32
	nameLen             uint64
	name                uintptr
	dateLen             uint64
	date                uintptr
	descLen             uint64
	desc                uintptr
}

type drmGetCap struct {
	capability uint64
	value      uint64
}

type drmPrimeHandle struct {
	handle uint32
	flags  uint32
	fd     int32
}

type drmModeFBCmd struct {
	fbID   uint32
	width  uint32
	height uint32
	pitch  uint32
	bpp    uint32
	depth  uint32
	handle uint32
}

type drmModeFBDirtyCmd struct {
	fbID     uint32
	flags    uint32
	color    uint32
	numClips uint32
	clipsPtr uint64
}

type drmModeCreateDumb struct {
	height uint32
	width  uint32
	bpp    uint32
	flags  uint32
	handle uint32
	pitch  uint32
	size   uint64
}

type drmModeMapDumb struct {
	handle uint32
	_      uint32
	offset uint64
}

type drmModeDestroyDumb struct {
	handle uint32
}

var (
	ioctlVersion         = iowr(0x00, unsafe.Sizeof(drmVersion{}))
	ioctlGetCap          = iowr(0x0c, unsafe.Sizeof(drmGetCap{}))
	ioctlPrimeFDToHandle = iowr(0x2e, unsafe.Sizeof(drmPrimeHandle{}))
	ioctlModeAddFB       = iowr(0xae, unsafe.Sizeof(drmModeFBCmd{}))
	ioctlModeRmFB        = iowr(0xaf, unsafe.Sizeof(uint32(0)))
	ioctlModeDirtyFB     = iowr(0xb1, unsafe.Sizeof(drmModeFBDirtyCmd{}))
	ioctlModeCreateDumb  = iowr(0xb2, unsafe.Sizeof(drmModeCreateDumb{}))
	ioctlModeMapDumb     = iowr(0xb3, unsafe.Sizeof(drmModeMapDumb{}))
	ioctlModeDestroyDumb = iowr(0xb4, unsafe.Sizeof(drmModeDestroyDumb{}))
)

// ioctl issues req, restarting on EINTR and EAGAIN like libdrm's drmIoctl.
// The returned error is a bare unix.Errno.
func ioctl(fd uintptr, req uintptr, arg unsafe.Pointer) error {
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
		switch errno {
		case 0:
			return nil
		case unix.EINTR, unix.EAGAIN:
			continue
		default:
			return errno
		}
	}
}
