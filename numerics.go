package ircwire

// ResponseCode is a server reply numeric in its integer form.
//
// The Rpl* string constants are the same codes in their wire form; use
// whichever comparison is convenient. Command.Code converts a parsed verb
// and ResponseCode.Command converts back.
type ResponseCode int

// Connection registration replies.
const (
	NumWelcome  ResponseCode = 1
	NumYourHost ResponseCode = 2
	NumCreated  ResponseCode = 3
	NumMyInfo   ResponseCode = 4
	NumISupport ResponseCode = 5
	NumBounce   ResponseCode = 10
)

// Command replies.
const (
	NumUModeIs         ResponseCode = 221
	NumLUserClient     ResponseCode = 251
	NumLUserOp         ResponseCode = 252
	NumLUserUnknown    ResponseCode = 253
	NumLUserChannels   ResponseCode = 254
	NumLUserMe         ResponseCode = 255
	NumTryAgain        ResponseCode = 263
	NumAway            ResponseCode = 301
	NumUserHost        ResponseCode = 302
	NumIsOn            ResponseCode = 303
	NumUnAway          ResponseCode = 305
	NumNowAway         ResponseCode = 306
	NumWhoIsUser       ResponseCode = 311
	NumWhoIsServer     ResponseCode = 312
	NumWhoIsOperator   ResponseCode = 313
	NumWhoWasUser      ResponseCode = 314
	NumEndOfWho        ResponseCode = 315
	NumWhoIsIdle       ResponseCode = 317
	NumEndOfWhoIs      ResponseCode = 318
	NumWhoIsChannels   ResponseCode = 319
	NumList            ResponseCode = 322
	NumListEnd         ResponseCode = 323
	NumChannelModeIs   ResponseCode = 324
	NumNoTopic         ResponseCode = 331
	NumTopic           ResponseCode = 332
	NumInviting        ResponseCode = 341
	NumInviteList      ResponseCode = 346
	NumEndOfInviteList ResponseCode = 347
	NumExceptList      ResponseCode = 348
	NumEndOfExceptList ResponseCode = 349
	NumVersion         ResponseCode = 351
	NumWhoReply        ResponseCode = 352
	NumNamReply        ResponseCode = 353
	NumEndOfNames      ResponseCode = 366
	NumBanList         ResponseCode = 367
	NumEndOfBanList    ResponseCode = 368
	NumEndOfWhoWas     ResponseCode = 369
	NumMOTD            ResponseCode = 372
	NumMOTDStart       ResponseCode = 375
	NumEndOfMOTD       ResponseCode = 376
	NumYoureOper       ResponseCode = 381
	NumRehashing       ResponseCode = 382
	NumTime            ResponseCode = 391
	NumHostHidden      ResponseCode = 396
)

// Error replies.
const (
	NumErrNoSuchNick        ResponseCode = 401
	NumErrNoSuchServer      ResponseCode = 402
	NumErrNoSuchChannel     ResponseCode = 403
	NumErrCannotSendToChan  ResponseCode = 404
	NumErrTooManyChannels   ResponseCode = 405
	NumErrWasNoSuchNick     ResponseCode = 406
	NumErrTooManyTargets    ResponseCode = 407
	NumErrNoOrigin          ResponseCode = 409
	NumErrInvalidCapCmd     ResponseCode = 410
	NumErrNoRecipient       ResponseCode = 411
	NumErrNoTextToSend      ResponseCode = 412
	NumErrUnknownCommand    ResponseCode = 421
	NumErrNoMOTD            ResponseCode = 422
	NumErrNoNicknameGiven   ResponseCode = 431
	NumErrErroneousNickname ResponseCode = 432
	NumErrNicknameInUse     ResponseCode = 433
	NumErrNickCollision     ResponseCode = 436
	NumErrUnavailResource   ResponseCode = 437
	NumErrUserNotInChannel  ResponseCode = 441
	NumErrNotOnChannel      ResponseCode = 442
	NumErrUserOnChannel     ResponseCode = 443
	NumErrNotRegistered     ResponseCode = 451
	NumErrNeedMoreParams    ResponseCode = 461
	NumErrAlreadyRegistered ResponseCode = 462
	NumErrPasswdMismatch    ResponseCode = 464
	NumErrYoureBannedCreep  ResponseCode = 465
	NumErrKeySet            ResponseCode = 467
	NumErrChannelIsFull     ResponseCode = 471
	NumErrUnknownMode       ResponseCode = 472
	NumErrInviteOnlyChan    ResponseCode = 473
	NumErrBannedFromChan    ResponseCode = 474
	NumErrBadChannelKey     ResponseCode = 475
	NumErrBadChanMask       ResponseCode = 476
	NumErrNoChanModes       ResponseCode = 477
	NumErrBanListFull       ResponseCode = 478
	NumErrNoPrivileges      ResponseCode = 481
	NumErrChanOPrivsNeeded  ResponseCode = 482
	NumErrCantKillServer    ResponseCode = 483
	NumErrRestricted        ResponseCode = 484
	NumErrUModeUnknownFlag  ResponseCode = 501
	NumErrUsersDontMatch    ResponseCode = 502
)

// IRCv3 replies.
const (
	NumStartTLS       ResponseCode = 670
	NumWhoIsSecure    ResponseCode = 671
	NumErrStartTLS    ResponseCode = 691
	NumMonOnline      ResponseCode = 730
	NumMonOffline     ResponseCode = 731
	NumMonList        ResponseCode = 732
	NumEndOfMonList   ResponseCode = 733
	NumErrMonListFull ResponseCode = 734
	NumLoggedIn       ResponseCode = 900
	NumLoggedOut      ResponseCode = 901
	NumErrNickLocked  ResponseCode = 902
	NumSaslSuccess    ResponseCode = 903
	NumErrSaslFail    ResponseCode = 904
	NumErrSaslTooLong ResponseCode = 905
	NumErrSaslAborted ResponseCode = 906
	NumErrSaslAlready ResponseCode = 907
	NumSaslMechs      ResponseCode = 908
)

// String returns the three-digit zero-padded wire form, e.g. "001".
func (c ResponseCode) String() string {
	return string(c.Command())
}

// Command returns the code as a Command for comparison against a
// parsed message verb.
func (c ResponseCode) Command() Command {
	if c < 0 || c > 999 {
		// out-of-range codes can't come from a parsed message;
		// render them anyway rather than panic
		c = 0
	}
	b := [3]byte{
		'0' + byte(c/100),
		'0' + byte(c/10%10),
		'0' + byte(c%10),
	}
	return Command(b[:])
}

// IsError reports whether the code is in one of the error ranges.
func (c ResponseCode) IsError() bool {
	switch c {
	case NumErrStartTLS, NumErrMonListFull, NumErrNickLocked,
		NumErrSaslFail, NumErrSaslTooLong, NumErrSaslAborted, NumErrSaslAlready:
		return true
	}
	return c >= 400 && c < 600
}

// Code converts a numeric command to its integer code.
// ok is false for non-numeric verbs.
func (c Command) Code() (code ResponseCode, ok bool) {
	if !c.IsNumeric() {
		return 0, false
	}
	for _, b := range []byte(c) {
		code = code*10 + ResponseCode(b-'0')
	}
	return code, true
}
