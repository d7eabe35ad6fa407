package main

// Response copy shown by the page and the admin dashboard.
const (
	MsgInvalidReport = "The capability report could not be read. The page stays in power-saving mode."

	MsgInvalidID = "Report ids are UUIDs."

	MsgReportNotFound = "No stored report has that id. Reports are removed after the retention period."

	MsgNotStored = "Do Not Track is set, so this report was classified but not stored."

	MsgStoreFailed = "The report could not be saved. Please try again later."

	MsgStatsFailed = "Failed to load statistics"

	MsgInvalidCredentials = "Invalid credentials"

	MsgLoginOK = "Logged in"

	MsgLoggedOut = "Logged out"

	MsgUnauthorized = "Admin login required"

	MsgReportDeleted = "Report deleted successfully"

	MsgPurgeStarted = "Privacy cleanup initiated"
)
