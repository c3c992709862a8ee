package urls

// Project is shown in the interactive screen header.
const Project = "github.com/healthyair/btscan"

// BluetoothTroubleshooting covers adapters that are missing, blocked by
// rfkill or not powered.
const BluetoothTroubleshooting = "https://wiki.archlinux.org/title/Bluetooth"

// BlueZ is the Linux Bluetooth stack the scanner talks to over D-Bus.
const BlueZ = "https://www.bluez.org/"
