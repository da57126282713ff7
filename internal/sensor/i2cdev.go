package sensor

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// i2cSlave is I2C_SLAVE from <linux/i2c-dev.h>: bind the fd to a
// peripheral address for subsequent read/write calls.
const i2cSlave = 0x0703

// I2CDev is a Bus backed by a Linux /dev/i2c-N character device.
type I2CDev struct {
	f *os.File
}

// OpenI2C opens the I2C adapter character device at path.
func OpenI2C(path string) (*I2CDev, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open i2c device: %w", err)
	}
	return &I2CDev{f: f}, nil
}

func (d *I2CDev) bind(addr byte) error {
	if err := unix.IoctlSetInt(int(d.f.Fd()), i2cSlave, int(addr)); err != nil {
		return fmt.Errorf("bind i2c address 0x%02x: %w", addr, err)
	}
	return nil
}

// Write sends buf to the peripheral at addr.
func (d *I2CDev) Write(addr byte, buf []byte) error {
	if err := d.bind(addr); err != nil {
		return err
	}
	if _, err := d.f.Write(buf); err != nil {
		return fmt.Errorf("i2c write: %w", err)
	}
	return nil
}

// Read fills buf from the peripheral at addr.
func (d *I2CDev) Read(addr byte, buf []byte) error {
	if err := d.bind(addr); err != nil {
		return err
	}
	if _, err := io.ReadFull(d.f, buf); err != nil {
		return fmt.Errorf("i2c read: %w", err)
	}
	return nil
}

// Close releases the adapter device.
func (d *I2CDev) Close() error {
	return d.f.Close()
}
