package domain

// Messages carried by failed login and sign-up outcomes.
const (
	MsgWrongCredentials      = "Wrong credentials!"
	MsgUserDoesNotExist      = "User doesn't exist. Please sign up."
	MsgAccountDeleted        = "Your account was deleted! Please, contact administration!"
	MsgInvalidUserRequest    = "Invalid user request"
	MsgInvalidEmail          = "Invalid email address"
	MsgInvalidPassword       = "Invalid user password"
	MsgInvalidDateOfBirth    = "Invalid date of birth"
	MsgInvalidFullName       = "Invalid full name"
	MsgInvalidCity           = "Invalid city"
	MsgInvalidCountry        = "Invalid country"
	MsgInvalidPhoneNumber    = "Invalid phone number"
	MsgInvalidProvince       = "Invalid province"
	MsgInvalidRegistrationNo = "invalid registration number"
	MsgRegistrationNoInUse   = "registration number is already in use"
	MsgUserAlreadyExists     = "User already exists"
	MsgPasswordNotSecured    = "Unable to secure user password"
	MsgInvalidRequest        = "Invalid request!"
	MsgPasswordSameAsCurrent = "new password cannot be the same as the current password"
)
