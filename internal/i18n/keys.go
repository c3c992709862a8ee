package i18n

// Message keys. Every locale file defines all of them.
const (
	AppTitle  = "app.title"
	ListTitle = "list.title"

	LabelName    = "label.name"
	LabelAddress = "label.address"
	LabelRSSI    = "label.rssi"
	LabelAlias   = "label.alias"
	LabelSeen    = "label.seen"

	DeviceUnnamed = "device.unnamed"

	DialogError    = "dialog.error"
	DialogWarning  = "dialog.warning"
	DialogQuestion = "dialog.question"

	MsgBluetoothOff          = "msg.bluetooth_off"
	MsgBluetoothNotSupported = "msg.bluetooth_not_supported"
	MsgEnablePrompt          = "msg.enable_prompt"
	MsgScanning              = "msg.scanning"
	MsgElapsed               = "msg.elapsed"
	MsgFound                 = "msg.found"
	MsgNoDevices             = "msg.no_devices"
	MsgScanFailed            = "msg.scan_failed"
	MsgScanStopped           = "msg.scan_stopped"

	KeyUpdate = "key.update"
	KeyStop   = "key.stop"
	KeyFilter = "key.filter"
	KeyQuit   = "key.quit"
	KeyOK     = "key.ok"
	KeyYes    = "key.yes"
	KeyNo     = "key.no"
)
