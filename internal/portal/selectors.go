package portal

import "time"

const (
	loginPath   = "/ozo/default.cfm?version=fixer"
	manHourArgs = "&app_cd=388&fuseaction=kos&today_open=1"
	monthlyArgs = "&app_cd=329&fuseaction=knt"

	microsoftLoginHost = "login.microsoftonline.com"
)

// Microsoft sign-in.
const (
	selUserID       = "#i0116"
	selPassword     = "#i0118"
	selSubmit       = "#idSIButton9"
	selPasswordErr  = "#passwordError"
	selUserIDErr    = "#usernameError"
	selAnyCredField = "#i0116, #i0118"
)

// Attendance page.
const (
	selClockInCell  = "table.BaseDesign tbody tr:nth-child(3) td:nth-child(3)"
	selClockOutCell = "table.BaseDesign tbody tr:nth-child(3) td:nth-child(4)"
	selClockInBtn   = "#btn03"
	selClockOutBtn  = "#btn04"
)

// Man-hour page.
const (
	selCopyPrevious = "#a_sub_copy_select"
	selWorkTimeRows = `[id^="div_sub_editlist_WORK_TIME_row"]`
	selProjectInput = "#div_project_%d > input:nth-child(4)"
	selRegister     = "#div_sub_buttons_regist"
)

// Monthly summary page.
const (
	selWorked      = "td.flex-roudou"
	selRequired    = ".flex-prescribed.kinmu-tooltip"
	selDiff        = "td.flex-prescribed-overless.kinmu-tooltip"
	selDailyDiff   = "#frmSearch > table:nth-child(36) > tbody > tr:nth-child(2) > td > table:nth-child(1) > tbody > tr:nth-child(3) > td:nth-child(22)"
	monthlyUnknown = "--:--"
)

const (
	loadTimeout         = 30 * time.Second
	credentialTimeout   = 30 * time.Second
	staySignedInTimeout = 5 * time.Second
	clockInSettle       = time.Second
	clockOutSettle      = 3 * time.Second
	clockOutLoadTimeout = 10 * time.Second
	copyButtonTimeout   = 10 * time.Second
	copySettle          = 2 * time.Second
	registerSettle      = 2 * time.Second
	registerLoadTimeout = 15 * time.Second
)
