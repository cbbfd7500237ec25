// Package hwsim provides simulated hardware audio endpoints: a sine tone
// source standing in for an I2S microphone and a rate limited sink standing
// in for an I2S DAC. They let the full record and playback flow run on a
// host with no audio hardware attached.
package hwsim
