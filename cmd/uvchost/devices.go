package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kevmo314/go-uvcstream"
)

func newDevicesCommand() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List USB devices with a video interface",
		Example: `  uvchost devices
  uvchost devices --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := uvc.ListDevices()
			if err != nil {
				return err
			}
			shown := 0
			for _, d := range devices {
				if !d.Video && !all {
					continue
				}
				shown++
				name := d.Product
				if d.Manufacturer != "" {
					name = d.Manufacturer + " " + name
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %04x:%04x  USB %s  %s",
					color.CyanString(d.Path), d.VendorID, d.ProductID, d.USBVersion, name)
				switch {
				case d.Video:
					fmt.Fprint(cmd.OutOrStdout(), color.GreenString("  video"))
				case d.OpenError != nil:
					fmt.Fprint(cmd.OutOrStdout(), faint.Sprintf("  (%v)", d.OpenError))
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if shown == 0 {
				faint.Fprintln(cmd.OutOrStdout(), "No video devices found. Use --all to list every device; opening a device may need root or a udev rule.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "list every USB device")
	return cmd
}
